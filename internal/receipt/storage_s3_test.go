package receipt

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeS3 struct {
	objects map[string][]byte
	err     error
	buckets []string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.buckets = append(f.buckets, aws.ToString(in.Bucket))
	if f.err != nil {
		return nil, f.err
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

var _ = Describe("S3Storage", func() {
	var (
		client  *fakeS3
		storage Storage
	)

	BeforeEach(func() {
		client = newFakeS3()
		storage = NewS3StorageWithClient(client, "receipts-bucket", "uploads")
	})

	Describe("Save", func() {
		var (
			savedName string
			err       error
		)

		JustBeforeEach(func() {
			savedName, err = storage.Save("test.jpg", []byte("image bytes"))
		})

		When("the upload succeeds", func() {
			It("returns the name without the prefix", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(savedName).To(Equal("test.jpg"))
			})

			It("stores the object under the prefix", func() {
				Expect(client.objects).To(HaveKeyWithValue("uploads/test.jpg", []byte("image bytes")))
				Expect(client.buckets).To(ConsistOf("receipts-bucket"))
			})
		})

		When("the upload fails", func() {
			BeforeEach(func() {
				client.err = errors.New("access denied")
			})

			It("returns the error", func() {
				Expect(err).To(MatchError(ContainSubstring("uploading object")))
				Expect(err).To(MatchError(ContainSubstring("access denied")))
			})
		})
	})

	Describe("Get", func() {
		var (
			name string
			data []byte
			err  error
		)

		BeforeEach(func() {
			client.objects["uploads/test.jpg"] = []byte("image bytes")
			name = "test.jpg"
		})

		JustBeforeEach(func() {
			data, err = storage.Get(name)
		})

		When("the object exists", func() {
			It("returns its contents", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(data).To(Equal([]byte("image bytes")))
			})
		})

		When("the object does not exist", func() {
			BeforeEach(func() {
				name = "missing.jpg"
			})

			It("returns the error", func() {
				Expect(err).To(MatchError(ContainSubstring("downloading object")))
			})
		})
	})

	Describe("Delete", func() {
		var err error

		BeforeEach(func() {
			client.objects["uploads/test.jpg"] = []byte("image bytes")
		})

		JustBeforeEach(func() {
			err = storage.Delete("test.jpg")
		})

		It("removes the object", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(client.objects).NotTo(HaveKey("uploads/test.jpg"))
		})

		When("the delete fails", func() {
			BeforeEach(func() {
				client.err = errors.New("throttled")
			})

			It("returns the error", func() {
				Expect(err).To(MatchError(ContainSubstring("deleting object")))
			})
		})
	})

	When("the name would escape the prefix", func() {
		It("rejects it without calling S3", func() {
			_, err := storage.Save("../other/test.jpg", []byte("image bytes"))
			Expect(err).To(MatchError(ErrInvalidImageName))
			_, err = storage.Get("../other/test.jpg")
			Expect(err).To(MatchError(ErrInvalidImageName))
			Expect(storage.Delete("../other/test.jpg")).To(MatchError(ErrInvalidImageName))
			Expect(client.buckets).To(BeEmpty())
			Expect(client.objects).To(BeEmpty())
		})
	})

	Describe("NewS3Storage", func() {
		It("requires a bucket", func() {
			_, err := NewS3Storage(context.Background(), "", "uploads")
			Expect(err).To(MatchError(ContainSubstring("bucket is required")))
		})
	})
})
