package link

import "github.com/sigurn/crc16"

// DNP3 uses the CRC-16/DNP parameter set: poly 0x3D65, init 0x0000,
// reflected in and out, xorout 0xFFFF. sigurn/crc16 ships this as a named
// preset, so the core no longer hand-rolls the table the way the teacher's
// original crc.go did.
var dnpTable = crc16.MakeTable(crc16.CRC16_DNP)

// CalculateCRC computes the DNP3 CRC-16 of data.
func CalculateCRC(data []byte) uint16 {
	crc := crc16.Init(dnpTable)
	crc = crc16.Update(crc, data, dnpTable)
	return crc16.Complete(crc, dnpTable)
}

// VerifyCRC reports whether the last two bytes of data (little-endian) match
// the CRC of the bytes preceding them.
func VerifyCRC(data []byte) bool {
	if len(data) < 2 {
		return false
	}
	calculated := CalculateCRC(data[:len(data)-2])
	received := uint16(data[len(data)-2]) | (uint16(data[len(data)-1]) << 8)
	return calculated == received
}

// AppendCRC appends the CRC-16 of data to a fresh copy of data.
func AppendCRC(data []byte) []byte {
	crc := CalculateCRC(data)
	result := make([]byte, len(data)+2)
	copy(result, data)
	result[len(data)] = byte(crc)
	result[len(data)+1] = byte(crc >> 8)
	return result
}

// AddCRCs splits data into BlockSize-byte blocks and appends a CRC-16 after
// each block, per IEEE 1815 §8.2.3.
func AddCRCs(data []byte) []byte {
	if len(data) == 0 {
		return nil
	}

	numBlocks := (len(data) + BlockSize - 1) / BlockSize
	result := make([]byte, 0, len(data)+numBlocks*2)

	for i := 0; i < len(data); i += BlockSize {
		end := i + BlockSize
		if end > len(data) {
			end = len(data)
		}
		block := data[i:end]
		result = append(result, block...)
		crc := CalculateCRC(block)
		result = append(result, byte(crc), byte(crc>>8))
	}

	return result
}

// RemoveCRCs verifies and strips the per-block CRCs added by AddCRCs.
func RemoveCRCs(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	result := make([]byte, 0, len(data))
	pos := 0

	for pos < len(data) {
		blockSize := BlockSize
		if pos+blockSize+2 > len(data) {
			blockSize = len(data) - pos - 2
			if blockSize <= 0 {
				return nil, ErrInvalidCRC
			}
		}

		block := data[pos : pos+blockSize]
		receivedCRC := uint16(data[pos+blockSize]) | (uint16(data[pos+blockSize+1]) << 8)
		if CalculateCRC(block) != receivedCRC {
			return nil, ErrInvalidCRC
		}

		result = append(result, block...)
		pos += blockSize + 2
	}

	return result, nil
}
