package chart

import (
	"log/slog"
	"os"

	"github.com/golang/freetype/truetype"
)

// cjkFontPaths are the usual install locations of CJK-capable fonts on
// Debian-family systems, including Raspberry Pi OS.
var cjkFontPaths = []string{
	"/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/truetype/noto/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/noto-cjk/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/truetype/wqy/wqy-zenhei.ttc",
	"/usr/share/fonts/truetype/wqy/wqy-microhei.ttc",
	"/usr/share/fonts/truetype/droid/DroidSansFallbackFull.ttf",
}

// loadCJKFont returns the first parseable candidate font, or nil when none
// is installed. Missing CJK fonts are not an error; the chart falls back to
// the library default and only CJK glyphs degrade.
func loadCJKFont() *truetype.Font {
	for _, path := range cjkFontPaths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		font, err := truetype.Parse(data)
		if err != nil {
			slog.Debug("Skipping unparseable font", "path", path, "error", err)
			continue
		}
		slog.Debug("Loaded CJK font", "path", path)
		return font
	}
	return nil
}
