package compress

import (
	"eserial/compress/gzip"
	"eserial/compress/lz4"
	"eserial/compress/snappy"
	"eserial/compress/zlib"
	"eserial/internal/errs"
)

var builtin = []Compressor{
	DoNothingCompressor{},
	gzip.Compressor{},
	lz4.Compressor{},
	snappy.Compressor{},
	zlib.Compressor{},
}

// ByName returns the built-in compressor named name. The empty name selects
// DoNothingCompressor.
func ByName(name string) (Compressor, error) {
	if name == "" {
		return DoNothingCompressor{}, nil
	}
	for _, c := range builtin {
		if c.Name() == name {
			return c, nil
		}
	}
	return nil, errs.UnknownCompressorErr(name)
}

func ByCode(code byte) (Compressor, error) {
	for _, c := range builtin {
		if c.Code() == code {
			return c, nil
		}
	}
	return nil, errs.UnknownCompressorErr(code)
}

// All lists the built-in compressors ordered by code.
func All() []Compressor {
	res := make([]Compressor, len(builtin))
	copy(res, builtin)
	return res
}
