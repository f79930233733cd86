package shape

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/OpenModelica/OMGraphics/pkg/annotation"
	"github.com/OpenModelica/OMGraphics/pkg/geom"
)

// Bitmap draws an image into its extent. The image comes from the inline
// base64 imageSource when present, otherwise from fileName.
type Bitmap struct {
	Base
	FileName     string // as written in the annotation
	ResolvedPath string // absolute path the image was loaded from
	ImageSource  string // base64 image bytes
	Image        image.Image
}

func newBitmap() *Bitmap {
	return &Bitmap{Base: newBase(KindBitmap)}
}

func (b *Bitmap) Kind() Kind              { return KindBitmap }
func (b *Bitmap) Common() *Base           { return &b.Base }
func (b *Bitmap) Annotation() string      { return annotationText(KindBitmap, b.fields(), b.raw) }
func (b *Bitmap) BoundingRect() geom.Rect { return b.extentRect() }

// Clone shares the decoded image, which is never mutated
func (b *Bitmap) Clone() Shape {
	c := *b
	c.Base = b.Base.clone()
	return &c
}

func (b *Bitmap) fields() []field {
	source := stringField("imageSource", &b.ImageSource)
	source.optional = true

	return append(b.GraphicItem.fields(),
		extentField("extent", &b.Extents),
		stringField("fileName", &b.FileName),
		source,
	)
}

// Load decodes the image. Errors are *MissingFile or *ImageDecodeFailure
// and leave Image nil; FileName is never modified.
func (b *Bitmap) Load(r Resolver, classFileName string) error {
	b.Image = nil
	b.ResolvedPath = ""

	if b.ImageSource != "" {
		data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(b.ImageSource))
		if err != nil {
			return &annotation.ImageDecodeFailure{Source: "imageSource", Err: err}
		}
		img, err := decodeImage(data)
		if err != nil {
			return &annotation.ImageDecodeFailure{Source: "imageSource", Err: err}
		}
		b.Image = img
		return nil
	}

	if b.FileName == "" {
		return nil
	}
	if r == nil {
		r = FileResolver{}
	}
	path, err := r.Resolve(b.FileName, classFileName)
	if err != nil {
		return &annotation.MissingFile{Path: b.FileName, Err: err}
	}
	b.ResolvedPath = path

	data, err := os.ReadFile(path)
	if err != nil {
		return &annotation.MissingFile{Path: path, Err: err}
	}
	img, err := decodeImage(data)
	if err != nil {
		return &annotation.ImageDecodeFailure{Source: path, Err: err}
	}
	b.Image = img
	return nil
}

// SetImageData replaces the inline image with the given encoded bytes
func (b *Bitmap) SetImageData(data []byte) error {
	img, err := decodeImage(data)
	if err != nil {
		return &annotation.ImageDecodeFailure{Source: "imageSource", Err: err}
	}
	b.ImageSource = base64.StdEncoding.EncodeToString(data)
	b.Image = img
	return nil
}

func decodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}

// Resolver maps a bitmap fileName to a path on disk
type Resolver interface {
	Resolve(fileName, classFileName string) (string, error)
}

// ErrUnresolved is returned for modelica:// URIs whose library is unknown
var ErrUnresolved = errors.New("cannot resolve resource")

// FileResolver resolves relative paths against the directory of the class
// file, file:// URIs directly and modelica://Package.Name/path URIs against
// the library roots. A library root directory contains one directory per
// top-level package.
type FileResolver struct {
	LibraryRoots []string
}

func (f FileResolver) Resolve(fileName, classFileName string) (string, error) {
	switch {
	case strings.HasPrefix(fileName, "modelica://"):
		return f.resolveModelica(fileName)
	case strings.HasPrefix(fileName, "file://"):
		u, err := url.Parse(fileName)
		if err != nil {
			return "", err
		}
		return filepath.FromSlash(u.Path), nil
	case filepath.IsAbs(fileName):
		return fileName, nil
	case classFileName != "":
		return filepath.Join(filepath.Dir(classFileName), fileName), nil
	}
	return filepath.Abs(fileName)
}

func (f FileResolver) resolveModelica(uri string) (string, error) {
	rest := strings.TrimPrefix(uri, "modelica://")
	pkg, path, _ := strings.Cut(rest, "/")
	if pkg == "" {
		return "", ErrUnresolved
	}
	dirs := strings.Split(pkg, ".")

	for _, root := range f.LibraryRoots {
		top, err := findPackageDir(root, dirs[0])
		if err != nil {
			continue
		}
		p := filepath.Join(append([]string{top}, dirs[1:]...)...)
		return filepath.Join(p, filepath.FromSlash(path)), nil
	}
	return "", ErrUnresolved
}

// findPackageDir accepts both "Modelica" and versioned "Modelica 4.0.0"
func findPackageDir(root, name string) (string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if e.Name() == name || strings.HasPrefix(e.Name(), name+" ") {
			return filepath.Join(root, e.Name()), nil
		}
	}
	return "", os.ErrNotExist
}
