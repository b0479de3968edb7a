// Package loader reads PDF files into page documents. Every image found on a
// page becomes an image object covering the page, which is how scanners lay
// out image-only pages. The real placement of each image is not read, so on
// a page with several images, or with an image drawn over part of the page,
// recognized text is laid over the whole page instead of the image's area.
// Read logs a warning for pages with more than one image.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/wudi/pdfsearchify/coords"
	"github.com/wudi/pdfsearchify/observability"
	"github.com/wudi/pdfsearchify/page"
)

var ErrNoPages = errors.New("loader: document has no pages")

// Options configures Load and Read.
type Options struct {
	Logger observability.Logger
	// Config overrides the pdfcpu configuration. Defaults to relaxed validation.
	Config *model.Configuration
}

func (o Options) config() *model.Configuration {
	if o.Config != nil {
		return o.Config
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

func (o Options) logger() observability.Logger {
	if o.Logger == nil {
		return observability.NopLogger{}
	}
	return o.Logger
}

// Load opens path and reads it with Read.
func Load(path string, opts Options) (*page.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, filepath.Base(path), opts)
}

// Read parses a PDF and returns its pages with their images.
func Read(rs io.ReadSeeker, name string, opts Options) (*page.Document, error) {
	conf := opts.config()
	log := opts.logger().With(observability.String("document", name))

	dims, err := api.PageDims(rs, conf)
	if err != nil {
		return nil, fmt.Errorf("read page dimensions of %s: %w", name, err)
	}
	if len(dims) == 0 {
		return nil, ErrNoPages
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind %s: %w", name, err)
	}
	extracted, err := api.ExtractImagesRaw(rs, nil, conf)
	if err != nil {
		return nil, fmt.Errorf("extract images of %s: %w", name, err)
	}

	var images []rawImage
	for _, perPage := range extracted {
		for _, img := range perPage {
			if img.Reader == nil {
				continue
			}
			data, err := io.ReadAll(img)
			if err != nil {
				log.Warn("skipping unreadable image",
					observability.Int("page", img.PageNr),
					observability.Int("object", img.ObjNr),
					observability.Error("error", err))
				continue
			}
			images = append(images, rawImage{
				pageNr:   img.PageNr,
				objNr:    img.ObjNr,
				name:     img.Name,
				fileType: img.FileType,
				width:    img.Width,
				height:   img.Height,
				data:     data,
			})
		}
	}

	doc := assemble(name, dims, images)
	doc.Logger = opts.logger()
	for i := range doc.PageCount() {
		p, _ := doc.Page(i)
		if n := len(p.ImageObjectIndices()); n > 1 {
			log.Warn("several images on page, text placed as if each covers the page",
				observability.Int("page", i+1),
				observability.Int("images", n))
		}
	}
	log.Debug("document loaded",
		observability.Int("pages", doc.PageCount()),
		observability.Int("images", len(images)))
	return doc, nil
}

type rawImage struct {
	pageNr   int // 1-based
	objNr    int
	name     string
	fileType string
	width    int
	height   int
	data     []byte
}

// assemble builds the document. Images are ordered by object number within a
// page; images on pages outside dims are dropped.
func assemble(name string, dims []types.Dim, images []rawImage) *page.Document {
	doc := page.NewDocument(name)
	for _, d := range dims {
		doc.AddPage(page.New(0, coords.Rect{URX: d.Width, URY: d.Height}))
	}
	sort.SliceStable(images, func(i, j int) bool {
		if images[i].pageNr != images[j].pageNr {
			return images[i].pageNr < images[j].pageNr
		}
		return images[i].objNr < images[j].objNr
	})
	for _, img := range images {
		p, ok := doc.Page(img.pageNr - 1)
		if !ok {
			continue
		}
		resName := img.name
		if resName == "" {
			resName = fmt.Sprintf("Im%d", img.objNr)
		}
		p.InsertObject(&page.ImageObject{
			Name:   resName,
			Width:  img.width,
			Height: img.height,
			Format: imageFormat(img.fileType),
			Data:   img.data,
			Matrix: coords.Scale(p.Width(), p.Height()),
		})
	}
	return doc
}

// imageFormat maps pdfcpu file types to the names image.Decode registers.
func imageFormat(fileType string) string {
	switch fileType {
	case "jpg", "jpeg":
		return "jpeg"
	case "tif", "tiff":
		return "tiff"
	case "":
		return "unknown"
	default:
		return fileType
	}
}
