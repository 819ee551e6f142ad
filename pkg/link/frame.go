package link

import "fmt"

// LinkHeaderFields are the decoded control-field and address fields of one
// inbound frame, handed to LinkLayer.OnFrame by the router after CRC
// validation and FT3 parsing.
type LinkHeaderFields struct {
	IsFromMaster bool         // the DIR bit, interpreted as the peer's role
	Src          uint16
	Dest         uint16
	Func         FunctionCode
	IsPrimary    IsPrimary
	FCB          bool // frame-count bit
	FCVDFC       bool // primary frames: frame-count-valid; secondary frames: data-flow-control
}

// buildControl assembles the control byte shared by every frame kind.
func buildControl(isMaster bool, isPrimary IsPrimary, fc FunctionCode, fcb, fcvDfc bool) uint8 {
	ctrl := uint8(fc) & CtrlFuncMask

	if isMaster {
		ctrl |= CtrlDIR
	}

	if isPrimary == PrimaryFrame {
		ctrl |= CtrlPRM
		if fcvDfc {
			ctrl |= CtrlFCV
			if fcb {
				ctrl |= CtrlFCB
			}
		}
	} else if fcvDfc {
		ctrl |= CtrlDFC
	}

	return ctrl
}

// formatHeader writes the 10-byte link header (without user data) into dest,
// with a length field counting dataLen bytes of user data, and returns those
// 10 header bytes.
func formatHeader(dest []byte, ctrl uint8, destAddr, srcAddr uint16, dataLen int) []byte {
	dest[0] = StartByte1
	dest[1] = StartByte2
	dest[2] = byte(dataLen + 5) // length = control + 2*address + user data
	dest[3] = ctrl
	dest[4] = byte(destAddr)
	dest[5] = byte(destAddr >> 8)
	dest[6] = byte(srcAddr)
	dest[7] = byte(srcAddr >> 8)

	crc := CalculateCRC(dest[0:8])
	dest[8] = byte(crc)
	dest[9] = byte(crc >> 8)

	return dest[0:10]
}

// formatNoData formats any of the fixed, user-data-free frame kinds.
func formatNoData(isMaster bool, isPrimary IsPrimary, fc FunctionCode, fcb, fcvDfc bool, destAddr, srcAddr uint16) []byte {
	buf := make([]byte, HeaderSize)
	ctrl := buildControl(isMaster, isPrimary, fc, fcb, fcvDfc)
	return formatHeader(buf, ctrl, destAddr, srcAddr, 0)
}

// FormatResetLinkStates formats a RESET_LINK_STATES frame.
func FormatResetLinkStates(isMaster bool, destAddr, srcAddr uint16) []byte {
	return formatNoData(isMaster, PrimaryFrame, FuncResetLink, false, false, destAddr, srcAddr)
}

// FormatTestLinkStates formats a TEST_LINK_STATES frame.
func FormatTestLinkStates(isMaster bool, fcb bool, destAddr, srcAddr uint16) []byte {
	return formatNoData(isMaster, PrimaryFrame, FuncTestLinkStates, fcb, true, destAddr, srcAddr)
}

// FormatRequestLinkStatus formats a REQUEST_LINK_STATUS frame.
func FormatRequestLinkStatus(isMaster bool, destAddr, srcAddr uint16) []byte {
	return formatNoData(isMaster, PrimaryFrame, FuncRequestLinkStatus, false, false, destAddr, srcAddr)
}

// FormatAck formats a secondary ACK frame. dfc reflects the local receive
// buffer state (data flow control bit).
func FormatAck(isMaster bool, dfc bool, destAddr, srcAddr uint16) []byte {
	return formatNoData(isMaster, SecondaryFrame, FuncAck, false, dfc, destAddr, srcAddr)
}

// FormatNack formats a secondary NACK frame.
func FormatNack(isMaster bool, dfc bool, destAddr, srcAddr uint16) []byte {
	return formatNoData(isMaster, SecondaryFrame, FuncNack, false, dfc, destAddr, srcAddr)
}

// FormatLinkStatus formats a LINK_STATUS response frame.
func FormatLinkStatus(isMaster bool, dfc bool, destAddr, srcAddr uint16) []byte {
	return formatNoData(isMaster, SecondaryFrame, FuncLinkStatusResponse, false, dfc, destAddr, srcAddr)
}

// FormatNotSupported formats a NOT_SUPPORTED (LINK_NOT_USED) frame.
func FormatNotSupported(isMaster bool, destAddr, srcAddr uint16) []byte {
	return formatNoData(isMaster, SecondaryFrame, FuncLinkNotUsed, false, false, destAddr, srcAddr)
}

// FormatConfirmedUserData formats a CONFIRMED_USER_DATA primary frame,
// chunking data into BlockSize-byte blocks each followed by its own CRC-16.
func FormatConfirmedUserData(isMaster bool, fcb bool, destAddr, srcAddr uint16, data []byte) ([]byte, error) {
	return formatUserData(isMaster, PrimaryFrame, FuncUserDataConfirmed, fcb, true, destAddr, srcAddr, data)
}

// FormatUnconfirmedUserData formats an UNCONFIRMED_USER_DATA primary frame.
func FormatUnconfirmedUserData(isMaster bool, destAddr, srcAddr uint16, data []byte) ([]byte, error) {
	return formatUserData(isMaster, PrimaryFrame, FuncUserDataUnconfirmed, false, false, destAddr, srcAddr, data)
}

func formatUserData(isMaster bool, isPrimary IsPrimary, fc FunctionCode, fcb, fcvDfc bool, destAddr, srcAddr uint16, data []byte) ([]byte, error) {
	if len(data) > MaxDataSize {
		return nil, ErrFrameTooLong
	}

	withCRCs := AddCRCs(data)
	buf := make([]byte, HeaderSize+len(withCRCs))

	ctrl := buildControl(isMaster, isPrimary, fc, fcb, fcvDfc)
	formatHeader(buf, ctrl, destAddr, srcAddr, len(data))
	copy(buf[HeaderSize:], withCRCs)

	return buf, nil
}

// Parse decodes one FT3 frame from the front of data, returning the decoded
// header, the validated user-data payload (without block CRCs), and the
// number of bytes the frame occupied. The router calls this once per frame
// before handing the result to LinkLayer.OnFrame.
func Parse(data []byte) (LinkHeaderFields, []byte, int, error) {
	if len(data) < MinFrameSize {
		return LinkHeaderFields{}, nil, len(data), ErrFrameTooShort
	}

	if data[0] != StartByte1 || data[1] != StartByte2 {
		return LinkHeaderFields{}, nil, 0, ErrInvalidStartBytes
	}

	length := int(data[2])
	if length < 5 {
		return LinkHeaderFields{}, nil, 0, ErrInvalidLength
	}

	dataLen := length - 5
	numBlocks := (dataLen + BlockSize - 1) / BlockSize
	frameSize := HeaderSize + dataLen + numBlocks*2

	if len(data) < frameSize {
		return LinkHeaderFields{}, nil, 0, ErrFrameTooShort
	}

	if !VerifyCRC(data[0:HeaderSize]) {
		return LinkHeaderFields{}, nil, 0, ErrInvalidCRC
	}

	ctrl := data[3]
	header := LinkHeaderFields{
		IsFromMaster: ctrl&CtrlDIR != 0,
		Dest:         uint16(data[4]) | uint16(data[5])<<8,
		Src:          uint16(data[6]) | uint16(data[7])<<8,
		Func:         FunctionCode(ctrl & CtrlFuncMask),
		IsPrimary:    IsPrimary(ctrl&CtrlPRM != 0),
	}
	if ctrl&CtrlPRM != 0 {
		header.FCVDFC = ctrl&CtrlFCV != 0
		header.FCB = ctrl&CtrlFCB != 0
	} else {
		header.FCVDFC = ctrl&CtrlDFC != 0
	}

	var userData []byte
	if dataLen > 0 {
		var err error
		userData, err = RemoveCRCs(data[HeaderSize:frameSize])
		if err != nil {
			return LinkHeaderFields{}, nil, 0, err
		}
	}

	return header, userData, frameSize, nil
}

func (h LinkHeaderFields) String() string {
	return fmt.Sprintf("Header{fromMaster=%t, src=%d, dest=%d, func=%d, primary=%s, fcb=%t, fcvdfc=%t}",
		h.IsFromMaster, h.Src, h.Dest, h.Func, h.IsPrimary, h.FCB, h.FCVDFC)
}
