package lettergen

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
)

// jpegQuality is used when re-encoding JPEG logos.
const jpegQuality = 95

// Image formats accepted for each branding slot.
var (
	logoMIMEs      = []string{"image/jpeg", "image/png"}
	signatureMIMEs = []string{"image/png"}
)

// brandImage is a decoded, re-encoded branding image ready for any engine.
type brandImage struct {
	data   []byte
	format string // "PNG" or "JPG", as fpdf names image types
	mime   string
}

// Branding holds the logo and signature images shared by every letter of a
// batch. Payloads are normalized once at construction; engines only ever read
// them through fresh readers, so a Branding can be reused across rows.
type Branding struct {
	logo         brandImage
	logoErr      error
	signature    brandImage
	signatureErr error
}

// NewBranding prepares logo (JPEG or PNG) and signature (PNG) images.
// Decoding problems are not returned here: they are remembered and reported by
// every render so that each affected row gets its own warning. Use Validate to
// check the images up front.
func NewBranding(logo, signature []byte) *Branding {
	b := &Branding{}
	b.logo, b.logoErr = prepareImage("logo", logo, logoMIMEs)
	b.signature, b.signatureErr = prepareImage("signature", signature, signatureMIMEs)
	return b
}

// Validate returns the first image error, or nil when both images are usable.
func (b *Branding) Validate() error {
	if b == nil {
		return ErrNilBranding
	}
	if b.logoErr != nil {
		return b.logoErr
	}
	return b.signatureErr
}

// prepareImage sniffs, decodes and re-encodes one image.
// Decoding applies EXIF orientation and flattens to 8-bit NRGBA, which both
// engines accept whatever the source bit depth or palette.
func prepareImage(slot string, raw []byte, allowed []string) (brandImage, error) {
	if len(raw) == 0 {
		return brandImage{}, fmt.Errorf("%s: %w", slot, ErrEmptyImage)
	}

	mt := mimetype.Detect(raw)
	if !isAllowedMIME(mt, allowed) {
		return brandImage{}, fmt.Errorf("%s: %w: %s", slot, ErrUnsupportedImage, mt.String())
	}

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return brandImage{}, fmt.Errorf("%s: %w: %v", slot, ErrInvalidImage, err)
	}
	flat := imaging.Clone(img)

	out := brandImage{format: "PNG", mime: "image/png"}
	format := imaging.PNG
	if mt.Is("image/jpeg") {
		out.format, out.mime, format = "JPG", "image/jpeg", imaging.JPEG
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, flat, format, imaging.JPEGQuality(jpegQuality)); err != nil {
		return brandImage{}, fmt.Errorf("%s: %w: re-encoding: %v", slot, ErrInvalidImage, err)
	}
	out.data = buf.Bytes()
	return out, nil
}

func isAllowedMIME(mt *mimetype.MIME, allowed []string) bool {
	for _, m := range allowed {
		if mt.Is(m) {
			return true
		}
	}
	return false
}

// reader returns a fresh reader over the image bytes.
func (i brandImage) reader() *bytes.Reader {
	return bytes.NewReader(i.data)
}
