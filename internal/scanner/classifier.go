package scanner

import (
	"github.com/feral-file/ff-stellar-market/internal/domain"
	"github.com/feral-file/ff-stellar-market/internal/keycodec"
	"github.com/feral-file/ff-stellar-market/internal/ledger"
	"github.com/feral-file/ff-stellar-market/internal/storage"
)

// Classifier turns ledger operations into marketplace events without any I/O
type Classifier struct {
	codec *keycodec.Codec
}

// NewClassifier creates a classifier deriving mint slots with codec
func NewClassifier(codec *keycodec.Codec) *Classifier {
	return &Classifier{codec: codec}
}

// Classify returns the event of op as seen by perspective, which may be empty.
// The second result is false for operations that are not marketplace operations.
func (c *Classifier) Classify(op ledger.Operation, perspective string) (domain.LedgerEvent, bool) {
	if op.Kind != ledger.OperationManageData {
		return domain.LedgerEvent{}, false
	}

	event := domain.LedgerEvent{
		Type:            domain.EventTypeUnknown,
		Account:         op.SourceAccount,
		Key:             op.Name,
		OperationID:     op.ID,
		TransactionHash: op.TransactionHash,
		Timestamp:       op.CreatedAt,
	}

	if op.Name == domain.MINT_MARKER_KEY {
		if op.Deleted() || len(op.Value) == 0 {
			return event, true
		}
		cid := string(op.Value)
		slot, err := c.codec.Slot(domain.TokenID(cid))
		if err != nil {
			return event, true
		}
		event.Type = domain.EventTypeMint
		event.CID = cid
		event.TokenID = domain.TokenID(cid)
		event.Slot = slot
		return event, true
	}

	slot, field, ok := keycodec.ParseKey(op.Name)
	if !ok {
		return domain.LedgerEvent{}, false
	}
	event.Slot = slot

	switch field {
	case domain.FieldPrice:
		if op.Deleted() {
			event.Type = domain.EventTypeDelist
			return event, true
		}
		price, err := storage.DecodePrice(string(op.Value))
		if err != nil {
			return event, true
		}
		event.Type = domain.EventTypeList
		event.Price = price
	case domain.FieldTransfer, domain.FieldOwner:
		if op.Deleted() {
			return event, true
		}
		value := string(op.Value)
		source := op.SourceAccount
		switch {
		case value == source:
			if field == domain.FieldOwner {
				event.Type = domain.EventTypeClaim
			}
		case perspective != "" && value == perspective:
			event.Type = domain.EventTypeTransferReceived
			event.Counterparty = source
		default:
			event.Type = domain.EventTypeTransferSent
			event.Counterparty = value
		}
	}

	return event, true
}
