package scanning

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("toPNG", func() {
	var (
		data        []byte
		contentType string
		result      []byte
		err         error
	)

	JustBeforeEach(func() {
		result, err = toPNG(data, contentType)
	})

	When("the upload is already PNG", func() {
		BeforeEach(func() {
			data = []byte("png bytes")
			contentType = "image/png"
		})

		It("returns the data unchanged", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(data))
		})
	})

	When("the upload is a JPEG", func() {
		BeforeEach(func() {
			img := image.NewRGBA(image.Rect(0, 0, 4, 4))
			img.Set(1, 1, color.White)
			var buf bytes.Buffer
			Expect(jpeg.Encode(&buf, img, nil)).To(Succeed())
			data = buf.Bytes()
			contentType = " Image/JPEG "
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("converts to a decodable PNG", func() {
			img, decodeErr := png.Decode(bytes.NewReader(result))
			Expect(decodeErr).NotTo(HaveOccurred())
			Expect(img.Bounds().Dx()).To(Equal(4))
		})
	})

	When("the upload is not an image", func() {
		BeforeEach(func() {
			data = []byte("hello")
			contentType = "application/octet-stream"
		})

		It("returns the error", func() {
			Expect(err).To(MatchError(ContainSubstring("decoding image")))
		})
	})
})

var _ = Describe("isHEIC", func() {
	It("detects the ftyp brand", func() {
		data := append([]byte{0, 0, 0, 24}, []byte("ftypheic0000")...)
		Expect(isHEIC(data, "application/octet-stream")).To(BeTrue())
	})

	It("detects the MIME type", func() {
		Expect(isHEIC(nil, "image/heif")).To(BeTrue())
	})

	It("rejects other data", func() {
		Expect(isHEIC([]byte("\x89PNG\r\n\x1a\n0000"), "image/png")).To(BeFalse())
	})
})

var _ = Describe("normalizeMimeType", func() {
	It("defaults to JPEG", func() {
		Expect(normalizeMimeType("")).To(Equal("image/jpeg"))
	})

	It("drops parameters and case", func() {
		Expect(normalizeMimeType("Application/PDF; charset=binary")).To(Equal("application/pdf"))
	})
})
