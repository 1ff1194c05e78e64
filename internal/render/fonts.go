package render

import (
	"math"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

type faceKey struct {
	bold bool
	size float64
}

// maxFaces bounds the face cache; zooming produces many pixel sizes
const maxFaces = 64

var (
	fontsOnce   sync.Once
	regularFont *truetype.Font
	boldFont    *truetype.Font

	facesMu sync.Mutex
	faces   = make(map[faceKey]font.Face)
)

func loadFonts() {
	regularFont, _ = truetype.Parse(goregular.TTF)
	boldFont, _ = truetype.Parse(gobold.TTF)
}

// fontFace returns a cached Go font face of the given pixel size, rounded
// to a quarter pixel. It falls back to the fixed 7x13 face if the embedded
// fonts fail to parse.
func fontFace(bold bool, size float64) font.Face {
	fontsOnce.Do(loadFonts)

	f := regularFont
	if bold {
		f = boldFont
	}
	if f == nil {
		return basicfont.Face7x13
	}

	facesMu.Lock()
	defer facesMu.Unlock()

	size = math.Round(size*4) / 4
	key := faceKey{bold: bold, size: size}
	if face, ok := faces[key]; ok {
		return face
	}
	if len(faces) >= maxFaces {
		faces = make(map[faceKey]font.Face)
	}
	face := truetype.NewFace(f, &truetype.Options{Size: size, Hinting: font.HintingNone})
	faces[key] = face
	return face
}
