package document

import (
	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"
)

// EMU conversion constants. An EMU is the fixed-point length unit used for
// shape positions and sizes: 914400 per inch.
const (
	EMUPerInch       int64 = 914400
	EMUPerCentimeter int64 = 360000
	EMUPerPoint      int64 = 12700
)

// EMUToInches converts EMU to inches.
func EMUToInches(emu int64) float64 {
	return float64(emu) / float64(EMUPerInch)
}

// InchesToEMU converts inches to EMU, rounding to the nearest unit.
func InchesToEMU(in float64) int64 {
	return int64(in*float64(EMUPerInch) + 0.5)
}

// EMUToCentimeters converts EMU to centimeters.
func EMUToCentimeters(emu int64) float64 {
	return float64(emu) / float64(EMUPerCentimeter)
}

// CentimetersToEMU converts centimeters to EMU, rounding to the nearest unit.
func CentimetersToEMU(cm float64) int64 {
	return int64(cm*float64(EMUPerCentimeter) + 0.5)
}

// Auto-sizer policy constants.
const (
	// heightGrowThreshold is the overflow percentage above which height grows.
	heightGrowThreshold = 5.0
	// widthGrowThreshold is the overflow percentage above which width may
	// grow, and then only for narrow or square shapes.
	widthGrowThreshold = 30.0
	// narrowAspectRatio bounds which shapes are eligible for width growth.
	narrowAspectRatio = 2.0
	// minHeightIncrease is the absolute floor on any height increase: 0.3in.
	minHeightIncrease = int64(274320)
	// maxWidthIncrease caps the absolute width increase at one inch.
	maxWidthIncrease = EMUPerInch
	// widthGrowFactor caps relative width growth.
	widthGrowFactor = 1.15
)

// AutoSizer grows shape bounds whose rendered text overflowed after
// translation. It never shrinks anything: layouts are never tightened
// automatically, so manual positioning stays stable.
type AutoSizer struct {
	logger *zap.Logger
}

func NewAutoSizer(logger *zap.Logger) *AutoSizer {
	return &AutoSizer{logger: logger}
}

// Resize estimates the shape's text overflow and grows its bounds when the
// growth thresholds are crossed. Shapes without bounds are a silent no-op.
func (a *AutoSizer) Resize(shape *ParsedShape) {
	if shape.Bounds == nil || shape.OriginalLength == 0 {
		return
	}

	overflow := overflowPercent(shape)
	if overflow <= heightGrowThreshold {
		return
	}

	b := shape.Bounds
	newHeight := int64(float64(b.Height) * (1 + overflow/100*1.2))
	if newHeight < b.Height+minHeightIncrease {
		newHeight = b.Height + minHeightIncrease
	}

	newWidth := b.Width
	if overflow > widthGrowThreshold && b.Height > 0 &&
		float64(b.Width)/float64(b.Height) < narrowAspectRatio {
		grown := int64(float64(b.Width) * widthGrowFactor)
		if grown > b.Width+maxWidthIncrease {
			grown = b.Width + maxWidthIncrease
		}
		newWidth = grown
	}

	a.logger.Debug("resizing shape",
		zap.Float64("overflowPct", overflow),
		zap.Int64("oldHeight", b.Height),
		zap.Int64("newHeight", newHeight),
		zap.Int64("oldWidth", b.Width),
		zap.Int64("newWidth", newWidth))

	b.SetSize(newWidth, newHeight)
}

// overflowPercent compares the shape's rendered text width before and after
// translation. Display cells rather than rune counts are used so that
// double-width CJK text is weighted realistically.
func overflowPercent(shape *ParsedShape) float64 {
	current := 0
	for _, p := range shape.Paragraphs {
		current += runewidth.StringWidth(p.FullText)
	}
	original := shape.originalWidth
	if original == 0 {
		original = shape.OriginalLength
	}
	if original == 0 {
		return 0
	}
	return (float64(current)/float64(original) - 1) * 100
}
