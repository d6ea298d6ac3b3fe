package spectral

import (
	"github.com/mjibson/go-dsp/fft"
)

// FFT returns the forward transform with kernel exp(-2πi·jm/N) and no
// normalisation.
func FFT(x []complex128) []complex128 {
	return fft.FFT(x)
}

// IFFT returns the inverse transform, scaled by 1/N.
func IFFT(x []complex128) []complex128 {
	return fft.IFFT(x)
}
