package valueobject

import (
	"fmt"
	"strings"
)

// Codec is the output format every artifact of one asset is encoded into.
type Codec string

const (
	CodecWebP Codec = "webp"
	CodecAVIF Codec = "avif"
	CodecJPEG Codec = "jpeg"
	CodecPNG  Codec = "png"
)

func ParseCodec(s string) (Codec, error) {
	switch c := Codec(strings.ToLower(strings.TrimSpace(s))); c {
	case CodecWebP, CodecAVIF, CodecJPEG, CodecPNG:
		return c, nil
	case "jpg":
		return CodecJPEG, nil
	default:
		return "", fmt.Errorf("unsupported codec %q", s)
	}
}

func (c Codec) Extension() string {
	if c == CodecJPEG {
		return "jpg"
	}
	return string(c)
}

func (c Codec) MimeType() string {
	return "image/" + string(c)
}

func (c Codec) String() string {
	return string(c)
}
