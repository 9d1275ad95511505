// Package photo provides the default PhotoComparator (§4.11, §6, §9): the
// core never decodes images itself, so Fingerprint is the one place actual
// image bytes are touched, producing an opaque difference-hash string that
// Person.PhotoFingerprints stores and Comparator later compares without
// ever seeing pixels again.
//
// Adapted from the teacher's image-decoding pipeline in
// internal/media/thumbnail.go (decode → golang.org/x/image/draw resize),
// repurposed from thumbnail generation to a fixed 9×8 grayscale downsample
// feeding a classic difference hash.
package photo

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

// hashWidth/hashHeight: a difference hash compares each pixel to its right
// neighbor, so a 9-wide row yields 8 comparison bits per row.
const (
	hashWidth  = 9
	hashHeight = 8
)

// DefaultMaxHammingDistance is the bit-difference budget two fingerprints
// may have and still be considered the same photo. 64 total bits, ~15%
// tolerance absorbs recompression and minor crops without conflating
// genuinely different photos.
const DefaultMaxHammingDistance = 10

// Fingerprint decodes an image and returns its difference-hash as a 16-hex
// -digit string. Returns an error if data is not a decodable image.
func Fingerprint(data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	small := image.NewGray(image.Rect(0, 0, hashWidth, hashHeight))
	draw.CatmullRom.Scale(small, small.Bounds(), img, img.Bounds(), draw.Over, nil)

	var bits uint64
	for y := 0; y < hashHeight; y++ {
		for x := 0; x < hashWidth-1; x++ {
			left := small.GrayAt(x, y)
			right := small.GrayAt(x+1, y)
			bits <<= 1
			if left.Y > right.Y {
				bits |= 1
			}
		}
	}
	return fmt.Sprintf("%016x", bits), nil
}

// Comparator is the default PhotoComparator: two fingerprint sets are
// equivalent if any pair is within MaxHammingDistance bits of each other.
type Comparator struct {
	MaxHammingDistance int
}

// NewComparator builds a Comparator using DefaultMaxHammingDistance.
func NewComparator() *Comparator {
	return &Comparator{MaxHammingDistance: DefaultMaxHammingDistance}
}

// Equivalent reports whether a and b describe the same underlying photo(s).
// Two empty sets are trivially equivalent (neither side has a photo to
// compare); one empty and one non-empty are never equivalent.
func (c *Comparator) Equivalent(a, b []string) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	threshold := c.MaxHammingDistance
	if threshold <= 0 {
		threshold = DefaultMaxHammingDistance
	}
	for _, fa := range a {
		for _, fb := range b {
			if d, ok := hammingDistance(fa, fb); ok && d <= threshold {
				return true
			}
		}
	}
	return false
}

func hammingDistance(a, b string) (int, bool) {
	ha, err := parseHex64(a)
	if err != nil {
		return 0, false
	}
	hb, err := parseHex64(b)
	if err != nil {
		return 0, false
	}
	x := ha ^ hb
	count := 0
	for x != 0 {
		count++
		x &= x - 1
	}
	return count, true
}

func parseHex64(s string) (uint64, error) {
	var v uint64
	_, err := fmt.Sscanf(s, "%016x", &v)
	return v, err
}
