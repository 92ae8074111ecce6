//go:build !gocv

package imaging

import "image"

func otsuMask(gray *image.Gray) *Mask { return levelOtsuMask(gray) }
