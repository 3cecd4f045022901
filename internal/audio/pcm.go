package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrPCMContract reports a buffer that violates the PCM layout contract.
// Violations are caller programming errors, not recoverable runtime
// conditions; callers are expected to treat them as fatal.
var ErrPCMContract = errors.New("PCM contract violation")

// SamplesFromBytes reinterprets a raw byte buffer as signed 16-bit
// little-endian PCM samples. The buffer length must be even.
func SamplesFromBytes(raw []byte) ([]int16, error) {
	if len(raw)%2 != 0 {
		return nil, fmt.Errorf("%w: buffer length %d is not a multiple of 2", ErrPCMContract, len(raw))
	}

	pcm := make([]int16, len(raw)/2)
	for i := range pcm {
		pcm[i] = int16(binary.LittleEndian.Uint16(raw[i*2:]))
	}

	return pcm, nil
}

// BytesFromSamples serializes int16 samples back to little-endian bytes.
func BytesFromSamples(pcm []int16) []byte {
	raw := make([]byte, len(pcm)*2)
	for i, s := range pcm {
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(s))
	}

	return raw
}

// Normalize converts int16 samples to float32 by dividing by 32768. The
// scale is asymmetric: negative full scale maps to -1.0 while positive full
// scale maps to 32767/32768 and never reaches 1.0. The asymmetry mirrors the
// re-quantization in Requantize and must not be "fixed".
func Normalize(pcm []int16) []float32 {
	out := make([]float32, len(pcm))
	for i, s := range pcm {
		out[i] = float32(s) / 32768.0
	}

	return out
}

// Deinterleave splits interleaved samples into per-channel sequences. The
// sample at frame i, channel c is read from interleaved index i*channels+c.
// The total sample count must be an integer multiple of the channel count.
func Deinterleave(pcm []int16, channels int) ([][]int16, error) {
	if channels < 1 {
		return nil, fmt.Errorf("%w: invalid channel count %d", ErrPCMContract, channels)
	}
	if len(pcm)%channels != 0 {
		return nil, fmt.Errorf("%w: %d samples not divisible by %d channels", ErrPCMContract, len(pcm), channels)
	}

	frames := len(pcm) / channels
	out := make([][]int16, channels)
	for c := range out {
		out[c] = make([]int16, frames)
		for i := range frames {
			out[c][i] = pcm[i*channels+c]
		}
	}

	return out, nil
}
