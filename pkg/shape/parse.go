package shape

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/OpenModelica/OMGraphics/pkg/annotation"
)

// Options controls how annotation text is turned into shapes
type Options struct {
	// Resolver locates bitmap files; nil uses FileResolver{}
	Resolver Resolver
	// ClassFileName is the file of the class owning the annotation
	ClassFileName string
	Logger        *slog.Logger
}

func (o *Options) logger() *slog.Logger {
	if o == nil || o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// ErrUnknownShape is returned for records that are not a shape variant
var ErrUnknownShape = errors.New("unknown shape record")

// Parse parses one shape annotation such as
// `Rectangle(extent={{-10,-10},{10,10}}, lineColor={0,0,255})`.
func Parse(text string) (Shape, error) {
	return ParseWith(text, nil)
}

// ParseWith parses one shape annotation. Unless the record name itself is
// unknown, a valid shape is always returned: recoverable problems are
// joined into the error and the affected fields keep their defaults.
func ParseWith(text string, opts *Options) (Shape, error) {
	var errs []error
	name, args, err := annotation.SplitCall(text)
	if err != nil {
		if name == "" {
			return nil, err
		}
		errs = append(errs, err)
	}
	kind, ok := ParseKind(name)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownShape, name)
	}

	s := New(kind, nil)

	tokens, err := annotation.GetStrings(args)
	if err != nil {
		errs = append(errs, err)
	}
	kept, ferrs := assign(kind.String(), s.fields(), tokens, true)
	s.Common().raw = kept
	errs = append(errs, ferrs...)

	if b, ok := s.(*Bitmap); ok {
		var r Resolver
		var classFile string
		if opts != nil {
			r, classFile = opts.Resolver, opts.ClassFileName
		}
		if err := b.Load(r, classFile); err != nil {
			errs = append(errs, err)
		}
	}

	log := opts.logger()
	for _, e := range errs {
		log.Debug("recovered annotation error", "shape", kind.String(), "error", e)
	}
	return s, errors.Join(errs...)
}
