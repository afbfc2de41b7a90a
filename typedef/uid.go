package typedef

import (
	"github.com/erasmus-gp/egpcore/egperr"
)

// UID is the packed 32-bit identifier of a type definition (spec §3.1,
// §6.4). Bit layout, grounded on the original bitdict configuration:
//
//	bit  31     reserved, must be 0
//	bits 28-30  TT   — template arity (0-7)
//	bit  27     IO   — wildcard flag, only meaningful when TT == 0
//	TT == 0, IO == 0 (a concrete or fixed-set leaf type):
//	  bits 24-26  FX   — fixed-set index (0-7)
//	  bits 16-23  reserved, must be 0
//	  bits 0-15   XUID — within-fixed-set extension id
//	TT == 0, IO == 1 (a wildcard coordinate type):
//	  bits 14-15  reserved, must be 0
//	  bits 8-13   X    — x coordinate (0-63)
//	  bits 4-7    reserved, must be 0
//	  bits 0-3    Y    — y coordinate (0-15)
//	TT > 0 (a template/compound type):
//	  bits 16-26  reserved, must be 0
//	  bits 0-15   XUID — within-TT extension id
type UID int32

const (
	maxTT   = 7
	maxFX   = 7
	maxX    = 63
	maxY    = 15
	maxXUID = 0xFFFF
)

const (
	shiftTT  = 28
	shiftIO  = 27
	shiftFX  = 24
	shiftX   = 8
	shiftY   = 0
	shiftXU  = 0
)

// Fields is the unpacked form of a UID.
type Fields struct {
	TT   uint8
	IO   bool
	FX   uint8
	XUID uint16
	X    uint8
	Y    uint8
}

// Pack validates f and composes it into a UID.
func Pack(f Fields) (UID, error) {
	if f.TT > maxTT {
		return 0, rangeErr("TT", int(f.TT), 0, maxTT)
	}
	var v int32
	v |= int32(f.TT) << shiftTT
	if f.TT > 0 {
		if f.XUID > maxXUID {
			return 0, rangeErr("XUID", int(f.XUID), 0, maxXUID)
		}
		v |= int32(f.XUID) << shiftXU
		return UID(v), nil
	}
	if f.IO {
		v |= 1 << shiftIO
		if f.X > maxX {
			return 0, rangeErr("X", int(f.X), 0, maxX)
		}
		if f.Y > maxY {
			return 0, rangeErr("Y", int(f.Y), 0, maxY)
		}
		v |= int32(f.X) << shiftX
		v |= int32(f.Y) << shiftY
		return UID(v), nil
	}
	if f.FX > maxFX {
		return 0, rangeErr("FX", int(f.FX), 0, maxFX)
	}
	if f.XUID > maxXUID {
		return 0, rangeErr("XUID", int(f.XUID), 0, maxXUID)
	}
	v |= int32(f.FX) << shiftFX
	v |= int32(f.XUID) << shiftXU
	return UID(v), nil
}

// Unpack decomposes u into its constituent Fields. The caller interprets
// only the fields valid for the reported TT/IO combination.
func (u UID) Unpack() Fields {
	v := int32(u)
	f := Fields{
		TT: uint8((v >> shiftTT) & 0x7),
	}
	if f.TT > 0 {
		f.XUID = uint16(v & maxXUID)
		return f
	}
	f.IO = (v>>shiftIO)&0x1 != 0
	if f.IO {
		f.X = uint8((v >> shiftX) & maxX)
		f.Y = uint8((v >> shiftY) & maxY)
		return f
	}
	f.FX = uint8((v >> shiftFX) & 0x7)
	f.XUID = uint16(v & maxXUID)
	return f
}

// TT returns the template arity encoded in u.
func (u UID) TT() uint8 {
	return uint8((int32(u) >> shiftTT) & 0x7)
}

func rangeErr(field string, got, lo, hi int) error {
	return egperr.Newf(egperr.EncodingError, "%s=%d out of range [%d,%d]", field, got, lo, hi)
}
