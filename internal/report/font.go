package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoCJKFont means no TrueType font with Chinese glyphs could be found.
var ErrNoCJKFont = errors.New("no CJK TrueType font found: set FONT_PATH")

// FontCandidates are tried in order when no font path is configured.
// fpdf reads single TrueType files only, so .ttc collections are not listed.
var FontCandidates = []string{
	"/usr/share/fonts/truetype/arphic-bkai00mp/bkai00mp.ttf",
	"/usr/share/fonts/truetype/arphic-bsmi00lp/bsmi00lp.ttf",
	"/usr/share/fonts/truetype/droid/DroidSansFallbackFull.ttf",
	"/usr/share/fonts/google-droid-sans-fonts/DroidSansFallbackFull.ttf",
	"/Library/Fonts/Arial Unicode.ttf",
	"/System/Library/Fonts/Supplemental/Arial Unicode.ttf",
	`C:\Windows\Fonts\kaiu.ttf`,
	`C:\Windows\Fonts\simhei.ttf`,
}

// FindCJKFont returns the first existing candidate font.
func FindCJKFont() (string, error) {
	for _, p := range FontCandidates {
		if fi, err := os.Stat(p); err == nil && fi.Mode().IsRegular() {
			return p, nil
		}
	}
	return "", ErrNoCJKFont
}

func checkFont(path string) error {
	if strings.EqualFold(filepath.Ext(path), ".ttc") {
		return fmt.Errorf("font %s: TrueType collections are not supported, use a .ttf file", path)
	}
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("font %s: %w", path, err)
	}
	if !fi.Mode().IsRegular() {
		return fmt.Errorf("font %s is not a regular file", path)
	}
	return nil
}
