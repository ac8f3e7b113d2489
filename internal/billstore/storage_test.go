package billstore

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LocalStorage", func() {
	var (
		tmpDir  string
		storage Storage
	)

	BeforeEach(func() {
		tmpDir = filepath.Join(GinkgoT().TempDir(), "receipts")
		var err error
		storage, err = NewLocalStorage(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	It("creates the base directory", func() {
		Expect(tmpDir).To(BeADirectory())
	})

	Describe("Save", func() {
		var (
			name  string
			saved string
			err   error
		)

		BeforeEach(func() {
			name = "key_receipt.jpg"
		})

		JustBeforeEach(func() {
			saved, err = storage.Save(name, []byte("test file content"))
		})

		When("saving succeeds", func() {
			It("returns the stored name", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(saved).To(Equal(name))
			})

			It("writes the file to disk", func() {
				Expect(filepath.Join(tmpDir, name)).To(BeAnExistingFile())
			})
		})

		When("the name contains a path", func() {
			BeforeEach(func() {
				name = "../escape.jpg"
			})

			It("returns ErrInvalidName", func() {
				Expect(err).To(MatchError(ErrInvalidName))
			})

			It("writes nothing outside the base directory", func() {
				Expect(filepath.Join(tmpDir, "..", "escape.jpg")).NotTo(BeAnExistingFile())
			})
		})
	})

	Describe("Get", func() {
		When("the file exists", func() {
			BeforeEach(func() {
				Expect(os.WriteFile(filepath.Join(tmpDir, "a.png"), []byte("content"), 0644)).To(Succeed())
			})

			It("returns its content", func() {
				data, err := storage.Get("a.png")
				Expect(err).NotTo(HaveOccurred())
				Expect(string(data)).To(Equal("content"))
			})
		})

		When("the file does not exist", func() {
			It("returns an error", func() {
				_, err := storage.Get("missing.png")
				Expect(err).To(HaveOccurred())
			})
		})

		When("the name is empty", func() {
			It("returns ErrInvalidName", func() {
				_, err := storage.Get("")
				Expect(err).To(MatchError(ErrInvalidName))
			})
		})
	})

	Describe("Delete", func() {
		BeforeEach(func() {
			Expect(os.WriteFile(filepath.Join(tmpDir, "a.png"), []byte("content"), 0644)).To(Succeed())
		})

		It("removes the file", func() {
			Expect(storage.Delete("a.png")).To(Succeed())
			Expect(filepath.Join(tmpDir, "a.png")).NotTo(BeAnExistingFile())
		})

		It("returns an error for a missing file", func() {
			Expect(storage.Delete("missing.png")).NotTo(Succeed())
		})
	})
})
