package format

type (
	Kind            uint8
	CompressionType uint8
)

const (
	KindObject    Kind = 0x1 // KindObject represents a JSON object token.
	KindArray     Kind = 0x2 // KindArray represents a JSON array token.
	KindString    Kind = 0x3 // KindString represents a JSON string token.
	KindPrimitive Kind = 0x4 // KindPrimitive represents a number, boolean or null token.

	CompressionNone CompressionType = 0x1 // CompressionNone represents an uncompressed data file.
	CompressionGzip CompressionType = 0x2 // CompressionGzip represents a gzip-compressed data file.
	CompressionZstd CompressionType = 0x3 // CompressionZstd represents a Zstandard-compressed data file.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents an LZ4 frame-compressed data file.
)

// IsContainer reports whether the kind is an object or an array, the two
// kinds whose tokens promise further child tokens.
func (k Kind) IsContainer() bool {
	return k == KindObject || k == KindArray
}

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "Object"
	case KindArray:
		return "Array"
	case KindString:
		return "String"
	case KindPrimitive:
		return "Primitive"
	default:
		return "Unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionGzip:
		return "Gzip"
	case CompressionZstd:
		return "Zstd"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}
