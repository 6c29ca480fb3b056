package invoice

import (
	"io"

	"go.uber.org/zap"

	"github.com/TemirB/invoice-processor/internal/domain"
)

// Result of parsing a whole document. OK is false only when the document
// itself could not be read; per-segment failures leave OK true.
type Result struct {
	OK       bool
	Orders   []domain.Order
	Failures []SegmentFailure
	Err      error
}

type Parser struct {
	delimiter string
}

func NewParser(delimiter string) *Parser {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}
	return &Parser{delimiter: delimiter}
}

func (p *Parser) Delimiter() string { return p.delimiter }

// Parse decodes every segment of r in document order. A bad segment is logged
// and skipped; only a read failure fails the document, and then no orders are
// returned.
func (p *Parser) Parse(r io.Reader, logger *zap.Logger) Result {
	var res Result
	for seg, err := range Segments(r, p.delimiter) {
		if err != nil {
			logger.Error("Exception encountered during Invoice parsing.", zap.Error(err))
			return Result{Err: err}
		}

		order, derr := DecodeOrder(seg)
		if derr != nil {
			logger.Error("Error parsing invoice: "+derr.Kind.Message(),
				zap.Int("segment", seg.Index),
				zap.String("kind", string(derr.Kind)),
				zap.Error(derr.Err),
			)
			res.Failures = append(res.Failures, SegmentFailure{Segment: seg.Index, Kind: derr.Kind, Err: derr.Err})
			continue
		}
		res.Orders = append(res.Orders, order)
	}
	res.OK = true
	return res
}
