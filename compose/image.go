package compose

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/inkform/inkform/draft"
	"github.com/inkform/inkform/geom"
	"github.com/inkform/inkform/internal/incr"
)

// composeSignature stamps the draft's signature image onto the page. A draft
// without an image leaves the document unchanged; the anchor it contributes
// is handled by the caller either way.
func composeSignature(data []byte, d *draft.Draft, rect geom.Rect) ([]byte, error) {
	if len(d.Image) == 0 {
		return data, nil
	}

	u, err := incr.NewUpdater(data)
	if err != nil {
		return nil, err
	}

	imageID, err := addImage(u, d.Image)
	if err != nil {
		return nil, err
	}
	resName := fmt.Sprintf("IF%d", imageID)

	var stream bytes.Buffer
	stream.WriteString("q\n")
	fmt.Fprintf(&stream, "%.2f 0 0 %.2f %.2f %.2f cm\n", rect.W, rect.H, rect.X, rect.Y)
	fmt.Fprintf(&stream, "/%s Do\n", resName)
	stream.WriteString("Q")

	contentID, err := u.AddObject(contentStream(stream.Bytes()))
	if err != nil {
		return nil, err
	}

	page, err := u.FindPage(d.Page)
	if err != nil {
		return nil, err
	}
	err = u.RewritePage(page, incr.PageUpdate{
		AddContents: []uint32{contentID},
		AddXObjects: map[string]uint32{resName: imageID},
	})
	if err != nil {
		return nil, err
	}

	return u.Finalize(0)
}

// addImage writes an image XObject. PNG pixels are re-encoded as a flate
// compressed RGB stream with a soft mask for transparency; opaque JPEG data
// passes through as DCTDecode.
func addImage(u *incr.Updater, data []byte) (uint32, error) {
	srcImg, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("decode image: %w", err)
	}

	bounds := srcImg.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	var rgbBuf, alphaBuf bytes.Buffer
	rgbWriter, _ := zlib.NewWriterLevel(&rgbBuf, zlib.DefaultCompression)
	alphaWriter, _ := zlib.NewWriterLevel(&alphaBuf, zlib.DefaultCompression)

	hasAlpha := false
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := srcImg.At(x, y).RGBA()
			a8 := uint8(a >> 8)
			if a8 < 255 {
				hasAlpha = true
			}
			alphaWriter.Write([]byte{a8})
			rgbWriter.Write([]byte{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)})
		}
	}
	rgbWriter.Close()
	alphaWriter.Close()

	var smaskID uint32
	if hasAlpha {
		var smask bytes.Buffer
		fmt.Fprintf(&smask,
			"<< /Type /XObject /Subtype /Image /Width %d /Height %d /ColorSpace /DeviceGray /BitsPerComponent 8 /Filter /FlateDecode /Length %d >>\nstream\n",
			width, height, alphaBuf.Len())
		smask.Write(alphaBuf.Bytes())
		smask.WriteString("\nendstream")
		smaskID, err = u.AddObject(smask.Bytes())
		if err != nil {
			return 0, err
		}
	}

	var obj bytes.Buffer
	obj.WriteString("<< /Type /XObject /Subtype /Image\n")
	fmt.Fprintf(&obj, "  /Width %d /Height %d /ColorSpace /DeviceRGB /BitsPerComponent 8\n", width, height)
	if smaskID != 0 {
		fmt.Fprintf(&obj, "  /SMask %d 0 R\n", smaskID)
	}
	if format == "jpeg" && !hasAlpha {
		fmt.Fprintf(&obj, "  /Filter /DCTDecode /Length %d >>\nstream\n", len(data))
		obj.Write(data)
	} else {
		fmt.Fprintf(&obj, "  /Filter /FlateDecode /Length %d >>\nstream\n", rgbBuf.Len())
		obj.Write(rgbBuf.Bytes())
	}
	obj.WriteString("\nendstream")

	return u.AddObject(obj.Bytes())
}
