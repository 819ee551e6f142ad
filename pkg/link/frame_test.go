package link

import (
	"bytes"
	"testing"
)

func TestFormatNoData_RoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		wire     []byte
		wantFunc FunctionCode
		wantPrim IsPrimary
	}{
		{"reset link states", FormatResetLinkStates(true, 1024, 1), FuncResetLink, PrimaryFrame},
		{"request link status", FormatRequestLinkStatus(true, 1024, 1), FuncRequestLinkStatus, PrimaryFrame},
		{"ack", FormatAck(false, false, 1, 1024), FuncAck, SecondaryFrame},
		{"nack", FormatNack(false, false, 1, 1024), FuncNack, SecondaryFrame},
		{"link status", FormatLinkStatus(false, false, 1, 1024), FuncLinkStatusResponse, SecondaryFrame},
		{"not supported", FormatNotSupported(false, 1, 1024), FuncLinkNotUsed, SecondaryFrame},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header, data, n, err := Parse(tt.wire)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if n != len(tt.wire) {
				t.Errorf("Parse() consumed %d bytes, want %d", n, len(tt.wire))
			}
			if len(data) != 0 {
				t.Errorf("Parse() userdata = % X, want empty", data)
			}
			if header.Func != tt.wantFunc {
				t.Errorf("Func = %d, want %d", header.Func, tt.wantFunc)
			}
			if header.IsPrimary != tt.wantPrim {
				t.Errorf("IsPrimary = %v, want %v", header.IsPrimary, tt.wantPrim)
			}
		})
	}
}

func TestFormatConfirmedUserData_RoundTrip(t *testing.T) {
	for _, fcb := range []bool{false, true} {
		for _, size := range []int{0, 1, BlockSize, BlockSize + 1, MaxDataSize} {
			data := bytes.Repeat([]byte{0xAB}, size)

			wire, err := FormatConfirmedUserData(true, fcb, 1024, 1, data)
			if err != nil {
				t.Fatalf("FormatConfirmedUserData() error = %v", err)
			}

			header, recovered, n, err := Parse(wire)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if n != len(wire) {
				t.Errorf("Parse() consumed %d bytes, want %d", n, len(wire))
			}
			if !bytes.Equal(recovered, data) {
				t.Errorf("recovered data mismatch for size %d", size)
			}
			if header.Func != FuncUserDataConfirmed {
				t.Errorf("Func = %d, want FuncUserDataConfirmed", header.Func)
			}
			if !header.FCVDFC {
				t.Errorf("FCVDFC (FCV) should be set on confirmed data")
			}
			if header.FCB != fcb {
				t.Errorf("FCB = %v, want %v", header.FCB, fcb)
			}
			if header.Src != 1 || header.Dest != 1024 {
				t.Errorf("Src/Dest = %d/%d, want 1/1024", header.Src, header.Dest)
			}
			if !header.IsFromMaster {
				t.Errorf("IsFromMaster should be true for a master-originated frame")
			}
		}
	}
}

func TestFormatUnconfirmedUserData_RoundTrip(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03}
	wire, err := FormatUnconfirmedUserData(false, 1, 1024, data)
	if err != nil {
		t.Fatalf("FormatUnconfirmedUserData() error = %v", err)
	}

	header, recovered, _, err := Parse(wire)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !bytes.Equal(recovered, data) {
		t.Errorf("recovered = % X, want % X", recovered, data)
	}
	if header.FCVDFC {
		t.Errorf("FCV should be clear on unconfirmed data")
	}
	if header.IsFromMaster {
		t.Errorf("IsFromMaster should be false for an outstation-originated frame")
	}
}

func TestFormatConfirmedUserData_TooLong(t *testing.T) {
	data := make([]byte, MaxDataSize+1)
	if _, err := FormatConfirmedUserData(true, false, 1024, 1, data); err != ErrFrameTooLong {
		t.Errorf("error = %v, want ErrFrameTooLong", err)
	}
}

func TestParse_RejectsBadStartBytes(t *testing.T) {
	wire := FormatResetLinkStates(true, 1024, 1)
	wire[0] = 0x00
	if _, _, _, err := Parse(wire); err != ErrInvalidStartBytes {
		t.Errorf("error = %v, want ErrInvalidStartBytes", err)
	}
}

func TestParse_RejectsBadHeaderCRC(t *testing.T) {
	wire := FormatResetLinkStates(true, 1024, 1)
	wire[8] ^= 0xFF
	if _, _, _, err := Parse(wire); err != ErrInvalidCRC {
		t.Errorf("error = %v, want ErrInvalidCRC", err)
	}
}

func TestParse_RejectsTruncatedFrame(t *testing.T) {
	wire, _ := FormatConfirmedUserData(true, false, 1024, 1, []byte{1, 2, 3})
	if _, _, _, err := Parse(wire[:len(wire)-3]); err != ErrFrameTooShort {
		t.Errorf("error = %v, want ErrFrameTooShort", err)
	}
}

func TestDataFlowControlBitRoutesThroughFCVDFC(t *testing.T) {
	wire := FormatNack(false, true, 1, 1024)
	header, _, _, err := Parse(wire)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !header.FCVDFC {
		t.Errorf("FCVDFC should carry the DFC bit through unchanged on a secondary frame")
	}
}
