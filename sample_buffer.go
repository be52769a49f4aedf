package softrast

// SampleBuffer is the supersampled working surface: rate×rate RGBA samples
// for each of width×height pixels, stored 4 bytes per sample.
//
// Sample (i, j) of pixel (x, y) lives at index (x + y*width)*rate² + i + j*rate,
// so all samples of one pixel are contiguous.
type SampleBuffer struct {
	width, height int
	rate          int
	data          []uint8
}

// NewSampleBuffer allocates a buffer for the given target size and sample
// rate, reset to opaque white.
func NewSampleBuffer(width, height, rate int) *SampleBuffer {
	width = max(width, 0)
	height = max(height, 0)
	rate = max(rate, 1)

	b := &SampleBuffer{
		width:  width,
		height: height,
		rate:   rate,
		data:   make([]uint8, 4*width*rate*height*rate),
	}
	b.Reset()
	return b
}

// Width returns the pixel width covered by the buffer.
func (b *SampleBuffer) Width() int { return b.width }

// Height returns the pixel height covered by the buffer.
func (b *SampleBuffer) Height() int { return b.height }

// Rate returns the per-axis sample rate.
func (b *SampleBuffer) Rate() int { return b.rate }

// Data returns the raw sample bytes.
func (b *SampleBuffer) Data() []uint8 { return b.data }

// Reset restores every sample to opaque white without reallocating.
func (b *SampleBuffer) Reset() {
	for i := range b.data {
		b.data[i] = 255
	}
}

// inBounds reports whether pixel (x, y) lies on the target.
func (b *SampleBuffer) inBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// offset returns the byte offset of sample (i, j) of pixel (x, y).
func (b *SampleBuffer) offset(x, y, i, j int) int {
	return 4 * ((x+y*b.width)*b.rate*b.rate + i + j*b.rate)
}

// FillSample overwrites one sample. Out-of-bounds pixels are ignored.
// The write replaces all four channels; nothing is blended.
func (b *SampleBuffer) FillSample(x, y, i, j int, c RGBA) {
	b.putSample(x, y, i, j, pixelOf(c))
}

// FillPixel overwrites every sample of pixel (x, y).
func (b *SampleBuffer) FillPixel(x, y int, c RGBA) {
	b.putPixel(x, y, pixelOf(c))
}

func pixelOf(c RGBA) [4]uint8 {
	r, g, bl, a := c.bytes()
	return [4]uint8{r, g, bl, a}
}

func (b *SampleBuffer) putSample(x, y, i, j int, px [4]uint8) {
	if !b.inBounds(x, y) {
		return
	}
	o := b.offset(x, y, i, j)
	copy(b.data[o:o+4], px[:])
}

func (b *SampleBuffer) putPixel(x, y int, px [4]uint8) {
	if !b.inBounds(x, y) {
		return
	}
	o := b.offset(x, y, 0, 0)
	end := o + 4*b.rate*b.rate
	for s := o; s < end; s += 4 {
		copy(b.data[s:s+4], px[:])
	}
}

// Sample returns the 8-bit channels of one sample.
func (b *SampleBuffer) Sample(x, y, i, j int) [4]uint8 {
	if !b.inBounds(x, y) {
		return [4]uint8{}
	}
	o := b.offset(x, y, i, j)
	return [4]uint8{b.data[o], b.data[o+1], b.data[o+2], b.data[o+3]}
}

// resolveRows box-filters pixel rows [y0, y1) into dst, a tightly packed
// RGBA buffer of width×height pixels. Each channel is the integer-truncated
// mean of the pixel's rate² samples.
func (b *SampleBuffer) resolveRows(dst []uint8, y0, y1 int) {
	n := b.rate * b.rate
	for y := y0; y < y1; y++ {
		for x := range b.width {
			o := b.offset(x, y, 0, 0)
			var sum [4]int
			for k := range n {
				s := o + 4*k
				sum[0] += int(b.data[s+0])
				sum[1] += int(b.data[s+1])
				sum[2] += int(b.data[s+2])
				sum[3] += int(b.data[s+3])
			}
			d := 4 * (x + y*b.width)
			dst[d+0] = uint8(sum[0] / n)
			dst[d+1] = uint8(sum[1] / n)
			dst[d+2] = uint8(sum[2] / n)
			dst[d+3] = uint8(sum[3] / n)
		}
	}
}
