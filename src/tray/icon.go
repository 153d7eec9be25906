package tray

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"math"
	"runtime"
)

const iconSize = 32

var (
	laserRed  = color.NRGBA{R: 0xe5, G: 0x1c, B: 0x23, A: 0xff}
	laserGlow = color.NRGBA{R: 0xff, G: 0x52, B: 0x52, A: 0x80}
)

// IconPNG draws the tray icon: a red dot with a soft halo.
func IconPNG() []byte {
	img := image.NewNRGBA(image.Rect(0, 0, iconSize, iconSize))
	c := float64(iconSize-1) / 2
	for y := 0; y < iconSize; y++ {
		for x := 0; x < iconSize; x++ {
			d := math.Hypot(float64(x)-c, float64(y)-c)
			switch {
			case d <= iconSize*0.28:
				img.SetNRGBA(x, y, laserRed)
			case d <= iconSize*0.45:
				img.SetNRGBA(x, y, laserGlow)
			}
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

// Icon returns the icon in the format systray expects on this platform.
// Windows wants an .ico container, which may hold a PNG image.
func Icon() []byte {
	if runtime.GOOS == "windows" {
		return wrapICO(IconPNG(), iconSize)
	}
	return IconPNG()
}

func wrapICO(pngData []byte, size int) []byte {
	var buf bytes.Buffer
	// ICONDIR
	_ = binary.Write(&buf, binary.LittleEndian, [3]uint16{0, 1, 1})
	// ICONDIRENTRY
	_ = binary.Write(&buf, binary.LittleEndian, struct {
		Width, Height, Colors, Reserved uint8
		Planes, BitCount                uint16
		Size, Offset                    uint32
	}{uint8(size), uint8(size), 0, 0, 1, 32, uint32(len(pngData)), 6 + 16})
	buf.Write(pngData)
	return buf.Bytes()
}
