package converter

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// writeFixture encodes img as PNG under the given name. Decoding sniffs
// file content, not extensions, so a PNG payload behind a .heic name
// exercises the full conversion path without needing a HEIC encoder.
func writeFixture(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func decodePNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	return img
}

func alphaFixture() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 0})    // fully transparent
	img.SetNRGBA(1, 0, color.NRGBA{R: 200, G: 0, B: 0, A: 255})   // fully opaque
	img.SetNRGBA(2, 0, color.NRGBA{R: 0, G: 0, B: 200, A: 128})   // half transparent
	return img
}

func TestConvertOne_FlattensAlphaOntoWhite(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "logo.heic")
	dst := filepath.Join(dir, "logo.png")
	writeFixture(t, src, alphaFixture())

	dest, err := ConvertOne(src, dst)
	if err != nil {
		t.Fatal(err)
	}
	if dest != dst {
		t.Errorf("dest = %q, want %q", dest, dst)
	}

	out := decodePNG(t, dst)
	if HasAlpha(out) {
		t.Error("output carries an alpha channel")
	}

	// Fully transparent pixels become exactly the white background.
	r, g, b, _ := out.At(0, 0).RGBA()
	if r>>8 != 255 || g>>8 != 255 || b>>8 != 255 {
		t.Errorf("transparent pixel = (%d,%d,%d), want (255,255,255)", r>>8, g>>8, b>>8)
	}

	// Fully opaque pixels keep their color.
	r, g, b, _ = out.At(1, 0).RGBA()
	if r>>8 != 200 || g>>8 != 0 || b>>8 != 0 {
		t.Errorf("opaque pixel = (%d,%d,%d), want (200,0,0)", r>>8, g>>8, b>>8)
	}

	// Half-transparent pixels blend toward white.
	r, g, b, _ = out.At(2, 0).RGBA()
	if r>>8 == 0 || r>>8 == 255 {
		t.Errorf("half-transparent red channel = %d, want a blend", r>>8)
	}
	if b>>8 == 200 || b>>8 == 255 {
		t.Errorf("half-transparent blue channel = %d, want a blend", b>>8)
	}
}

func TestConvertOne_GrayBecomesRGB(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "mono.heic")
	dst := filepath.Join(dir, "mono.png")

	gray := image.NewGray(image.Rect(0, 0, 2, 2))
	gray.SetGray(0, 0, color.Gray{Y: 77})
	gray.SetGray(1, 1, color.Gray{Y: 200})
	writeFixture(t, src, gray)

	if _, err := ConvertOne(src, dst); err != nil {
		t.Fatal(err)
	}

	out := decodePNG(t, dst)
	if _, ok := out.(*image.Gray); ok {
		t.Fatal("output is still grayscale")
	}
	if HasAlpha(out) {
		t.Error("output carries an alpha channel")
	}
	r, g, b, _ := out.At(0, 0).RGBA()
	if r>>8 != 77 || g>>8 != 77 || b>>8 != 77 {
		t.Errorf("pixel = (%d,%d,%d), want (77,77,77)", r>>8, g>>8, b>>8)
	}
}

func TestConvertOne_Overwrite(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "photo.heic")
	dst := filepath.Join(dir, "photo.png")
	writeFixture(t, src, alphaFixture())

	if _, err := ConvertOne(src, dst); err != nil {
		t.Fatal(err)
	}
	first, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}

	// Re-running overwrites without error and yields stable output.
	if _, err := ConvertOne(src, dst); err != nil {
		t.Fatalf("second run: %v", err)
	}
	second, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if first.Size() != second.Size() {
		t.Errorf("size changed between runs: %d vs %d", first.Size(), second.Size())
	}
}

func TestConvertOne_CorruptInput(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "broken.heic")
	dst := filepath.Join(dir, "broken.png")
	if err := os.WriteFile(src, []byte("definitely not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := ConvertOne(src, dst)
	if err == nil {
		t.Fatal("expected error for corrupt input")
	}
	var ce *ConvertError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %T, want *ConvertError", err)
	}
	if ce.File != src {
		t.Errorf("ConvertError.File = %q, want %q", ce.File, src)
	}
	if ce.Unwrap() == nil {
		t.Error("ConvertError carries no cause")
	}

	// No partial output file.
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Error("partial output file left behind")
	}
}

func TestConvertOne_MissingDestParent(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "photo.heic")
	dst := filepath.Join(dir, "missing", "photo.png")
	writeFixture(t, src, alphaFixture())

	_, err := ConvertOne(src, dst)
	var ce *ConvertError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want *ConvertError", err)
	}
}

func TestFlatten_OpaqueUnchanged(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 9, G: 8, B: 7, A: 255})

	flat := flatten(img)
	for x := 0; x < 2; x++ {
		want := img.NRGBAAt(x, 0)
		got := flat.NRGBAAt(x, 0)
		if got != want {
			t.Errorf("pixel %d: got %v, want %v", x, got, want)
		}
	}
}

func TestFlatten_AlphaResultIsOpaque(t *testing.T) {
	flat := flatten(alphaFixture())
	if HasAlpha(flat) {
		t.Error("flattened image still has alpha")
	}
}
