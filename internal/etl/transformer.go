package etl

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/janduczek/retailsync/pkg/models"
	"github.com/janduczek/retailsync/pkg/utils"
)

// RejectReason tags why a row was excluded from the load.
type RejectReason string

const (
	RejectInvalidDate    RejectReason = "InvalidDate"
	RejectInvalidNumeric RejectReason = "InvalidNumeric"
	RejectMissingKey     RejectReason = "MissingKey"
	RejectMalformedRow   RejectReason = "MalformedRow"
)

// Expected columns of the retail transaction extracts. Matched
// case-sensitively; extra columns in a file are ignored.
const (
	colInvoiceNo   = "InvoiceNo"
	colStockCode   = "StockCode"
	colDescription = "Description"
	colQuantity    = "Quantity"
	colInvoiceDate = "InvoiceDate"
	colUnitPrice   = "UnitPrice"
	colCustomerID  = "CustomerID"
	colCountry     = "Country"
)

// Transformer maps one raw row to one canonical document, or to a rejection
// reason. It performs no I/O and holds no counters; accounting is the
// caller's job.
type Transformer struct {
	Source models.SourceFile

	// Now supplies ingestedAt; overridable in tests.
	Now func() time.Time
}

func NewTransformer(source models.SourceFile) *Transformer {
	return &Transformer{
		Source: source,
		Now:    func() time.Time { return time.Now().UTC() },
	}
}

// Transform produces the canonical document for a row. A nil document is
// accompanied by the reason the row was rejected.
func (t *Transformer) Transform(row RawRow) (*models.Document, RejectReason) {
	externalID := strings.TrimSpace(row[colInvoiceNo])
	stockCode := strings.TrimSpace(row[colStockCode])
	if externalID == "" || stockCode == "" {
		return nil, RejectMissingKey
	}

	eventTime, err := utils.ParseEventTime(row[colInvoiceDate])
	if err != nil {
		return nil, RejectInvalidDate
	}

	quantity, err := utils.ParseQuantity(row[colQuantity])
	if err != nil {
		return nil, RejectInvalidNumeric
	}
	unitPrice, err := utils.ParseDecimal(row[colUnitPrice])
	if err != nil {
		return nil, RejectInvalidNumeric
	}
	amount := unitPrice.Mul(decimal.NewFromInt(quantity))

	amount128, err := primitive.ParseDecimal128(amount.String())
	if err != nil {
		return nil, RejectInvalidNumeric
	}
	unitPrice128, err := primitive.ParseDecimal128(unitPrice.String())
	if err != nil {
		return nil, RejectInvalidNumeric
	}

	// A missing customer is an anonymous order, not a rejection.
	var entityID *string
	if v := strings.TrimSpace(row[colCustomerID]); v != "" {
		entityID = &v
	}

	doc := &models.Document{
		DedupKey:      models.ComputeDedupKey(externalID, stockCode, entityID),
		SchemaVersion: models.SchemaVersion,
		Source: models.Source{
			Name:       t.Source.Name,
			Type:       "csv",
			SourceID:   t.Source.SourceID,
			ExternalID: externalID,
		},
		IngestedAt: t.Now(),
		EventTime:  eventTime,
		Entity: models.Entity{
			ID:   entityID,
			Type: "customer",
		},
		Metrics: models.Metrics{
			Amount:    amount128,
			Count:     quantity,
			UnitPrice: unitPrice128,
		},
		Metadata: models.Metadata{
			Description: strings.TrimSpace(row[colDescription]),
			StockCode:   stockCode,
			Country:     strings.TrimSpace(row[colCountry]),
		},
	}
	return doc, ""
}
