package scanner

import (
	"context"
	"sort"

	"github.com/alitto/pond/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/feral-file/ff-stellar-market/internal/domain"
	"github.com/feral-file/ff-stellar-market/internal/keycodec"
	"github.com/feral-file/ff-stellar-market/internal/ledger"
	"github.com/feral-file/ff-stellar-market/internal/logger"
	"github.com/feral-file/ff-stellar-market/internal/metadata"
	"github.com/feral-file/ff-stellar-market/internal/metrics"
	"github.com/feral-file/ff-stellar-market/internal/registry"
	"github.com/feral-file/ff-stellar-market/internal/storage"
)

const defaultMarketplaceLimit = 50

// Config holds scanner configuration
type Config struct {
	// HistoryLimit is the number of most recent transactions in a window
	HistoryLimit int
	// WorkerPoolSize bounds concurrent metadata resolutions
	WorkerPoolSize int
}

// Scanner rebuilds marketplace views by replaying ledger history.
// Every call recomputes its view; nothing is cached between calls.
type Scanner struct {
	cfg        Config
	ledger     ledger.Client
	storage    *storage.Storage
	codec      *keycodec.Codec
	resolver   metadata.Resolver
	blocklist  registry.Blocklist
	classifier *Classifier
	pool       pond.ResultPool[*resolvedMetadata]
}

type resolvedMetadata struct {
	token  domain.TokenID
	record *domain.MetadataRecord
	err    error
}

// New creates a scanner
func New(cfg Config, ledgerClient ledger.Client, store *storage.Storage, resolver metadata.Resolver, blocklist registry.Blocklist) *Scanner {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = domain.DEFAULT_HISTORY_LIMIT
	}
	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = 8
	}

	return &Scanner{
		cfg:        cfg,
		ledger:     ledgerClient,
		storage:    store,
		codec:      store.Codec(),
		resolver:   resolver,
		blocklist:  blocklist,
		classifier: NewClassifier(store.Codec()),
		pool:       pond.NewResultPool[*resolvedMetadata](cfg.WorkerPoolSize),
	}
}

// Close stops the metadata worker pool
func (s *Scanner) Close() {
	s.pool.StopAndWait()
}

// ScanCreated returns the tokens minted by account
func (s *Scanner) ScanCreated(ctx context.Context, account string) ([]domain.NFTRecord, error) {
	timer := prometheus.NewTimer(metrics.ScanDuration.WithLabelValues("created"))
	defer timer.ObserveDuration()

	sc := s.newScan()
	w, err := sc.window(ctx, account, account)
	if err != nil {
		return nil, err
	}

	acct, err := sc.account(ctx, account)
	if err != nil {
		return nil, &domain.ScanError{Scope: account, Cause: err}
	}

	seen := make(map[string]bool)
	var records []domain.NFTRecord
	for _, event := range w.events {
		if event.Type != domain.EventTypeMint || event.Account != account || seen[event.Slot] {
			continue
		}
		seen[event.Slot] = true

		record := domain.NFTRecord{
			TokenID:         event.TokenID,
			Slot:            event.Slot,
			Creator:         account,
			Owner:           account,
			TransactionHash: event.TransactionHash,
			Timestamp:       event.Timestamp,
		}
		if owner, ok := s.storage.OwnerFromEntries(acct, event.TokenID); ok && owner != account {
			record.Owner = owner
		} else if buyer, sold := soldTo(w.events, account, event.Slot); sold {
			record.Owner = buyer
		} else if price, listed := s.storage.ListingFromEntries(acct, event.TokenID); listed {
			record.Listed = true
			record.Price = price
		}
		records = append(records, record)
	}

	return s.withMetadata(ctx, records), nil
}

// ScanOwned returns the tokens account currently holds: minted or claimed by it and
// not transferred or sold since
func (s *Scanner) ScanOwned(ctx context.Context, account string) ([]domain.NFTRecord, error) {
	timer := prometheus.NewTimer(metrics.ScanDuration.WithLabelValues("owned"))
	defer timer.ObserveDuration()

	sc := s.newScan()
	w, err := sc.window(ctx, account, account)
	if err != nil {
		return nil, err
	}

	acct, err := sc.account(ctx, account)
	if err != nil {
		return nil, &domain.ScanError{Scope: account, Cause: err}
	}

	minted := make(map[string]bool)
	for _, event := range w.events {
		if event.Type == domain.EventTypeMint && event.Account == account {
			minted[event.Slot] = true
		}
	}

	seen := make(map[string]bool)
	var records []domain.NFTRecord
	for _, event := range w.events {
		if event.Account != account || seen[event.Slot] {
			continue
		}
		if event.Type != domain.EventTypeMint && event.Type != domain.EventTypeClaim {
			continue
		}
		seen[event.Slot] = true

		if _, sold := soldTo(w.events, account, event.Slot); sold {
			continue
		}

		token, ok := sc.tokenFor(ctx, event.Slot, w.related(event)...)
		if !ok {
			logger.WarnCtx(ctx, "dropping unresolved token", zap.String("slot", event.Slot), logger.Account(account))
			continue
		}

		if owner, ok := s.storage.OwnerFromEntries(acct, token); ok && owner != account {
			continue
		}

		record := domain.NFTRecord{
			TokenID:         token,
			Slot:            event.Slot,
			Owner:           account,
			TransactionHash: event.TransactionHash,
			Timestamp:       event.Timestamp,
		}
		if minted[event.Slot] {
			record.Creator = account
		}
		if price, listed := s.storage.ListingFromEntries(acct, token); listed {
			record.Listed = true
			record.Price = price
		}
		records = append(records, record)
	}

	return s.withMetadata(ctx, records), nil
}

// ScanReceived returns the tokens other accounts transferred to account whose marker
// still points at it. Data entry values do not make an account a participant of the
// sender's transaction, so the network window is scanned.
func (s *Scanner) ScanReceived(ctx context.Context, account string) ([]domain.NFTRecord, error) {
	timer := prometheus.NewTimer(metrics.ScanDuration.WithLabelValues("received"))
	defer timer.ObserveDuration()

	sc := s.newScan()
	w, err := sc.window(ctx, "", account)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var records []domain.NFTRecord
	for _, event := range w.events {
		if event.Type != domain.EventTypeTransferReceived || seen[event.Slot+"|"+event.Account] {
			continue
		}
		seen[event.Slot+"|"+event.Account] = true

		token, ok := sc.tokenFor(ctx, event.Slot, event.Account)
		if !ok {
			logger.WarnCtx(ctx, "dropping unresolved token", zap.String("slot", event.Slot), logger.Account(event.Account))
			continue
		}

		sender, err := sc.account(ctx, event.Account)
		if err != nil {
			logger.WarnCtx(ctx, "failed to load sender", logger.Account(event.Account), zap.Error(err))
			continue
		}
		if owner, ok := s.storage.OwnerFromEntries(sender, token); !ok || owner != account {
			continue
		}

		records = append(records, domain.NFTRecord{
			TokenID:         token,
			Slot:            event.Slot,
			Owner:           account,
			Sender:          event.Account,
			TransactionHash: event.TransactionHash,
			Timestamp:       event.Timestamp,
		})
	}

	records = lo.UniqBy(records, func(r domain.NFTRecord) domain.TokenID { return r.TokenID })
	return s.withMetadata(ctx, records), nil
}

// ScanMarketplace returns at most limit live listings of the network window, newest first
func (s *Scanner) ScanMarketplace(ctx context.Context, limit int) ([]domain.ListingRecord, error) {
	timer := prometheus.NewTimer(metrics.ScanDuration.WithLabelValues("marketplace"))
	defer timer.ObserveDuration()

	if limit <= 0 {
		limit = defaultMarketplaceLimit
	}

	sc := s.newScan()
	w, err := sc.window(ctx, "", "")
	if err != nil {
		return nil, err
	}

	seenListing := make(map[string]bool)
	seenToken := make(map[domain.TokenID]bool)
	var listings []domain.ListingRecord
	for i, event := range w.events {
		if event.Type != domain.EventTypeList || seenListing[event.Slot+"|"+event.Account] {
			continue
		}
		seenListing[event.Slot+"|"+event.Account] = true

		if s.blocklist != nil && s.blocklist.IsBlockedAccount(event.Account) {
			continue
		}
		if claimedAfter(w.events[:i], event.Slot, event.Account) {
			continue
		}

		listing, ok := s.liveListing(ctx, sc, event, w)
		if !ok || seenToken[listing.TokenID] {
			continue
		}
		if s.blocklist != nil && s.blocklist.IsBlockedToken(listing.TokenID) {
			continue
		}
		seenToken[listing.TokenID] = true
		listings = append(listings, *listing)
	}

	return s.firstResolved(ctx, listings, limit), nil
}

// firstResolved resolves listings in order, one batch at a time, until limit of them have metadata
func (s *Scanner) firstResolved(ctx context.Context, listings []domain.ListingRecord, limit int) []domain.ListingRecord {
	resolved := make([]domain.ListingRecord, 0, min(limit, len(listings)))
	for start := 0; start < len(listings) && len(resolved) < limit; {
		end := min(start+limit-len(resolved), len(listings))
		resolved = append(resolved, s.listingsWithMetadata(ctx, listings[start:end])...)
		start = end
	}
	return resolved
}

// IsHolder reports whether account currently holds tokenID. The owner entry must name the
// account and no newer claim by another account may exist in the account's window.
func (s *Scanner) IsHolder(ctx context.Context, account string, tokenID domain.TokenID) (bool, error) {
	return s.newScan().holds(ctx, account, tokenID)
}

// FindListing returns the live listing of tokenID without metadata
func (s *Scanner) FindListing(ctx context.Context, tokenID domain.TokenID) (*domain.ListingRecord, error) {
	slot, err := s.codec.Slot(tokenID)
	if err != nil {
		return nil, err
	}

	sc := s.newScan()
	w, err := sc.window(ctx, "", "")
	if err != nil {
		return nil, err
	}
	sc.index[slot] = tokenID
	if legacy, ok := s.codec.LegacyKey(tokenID, domain.FieldPrice); ok {
		if legacySlot, _, ok := keycodec.ParseKey(legacy); ok {
			sc.index[legacySlot] = tokenID
		}
	}

	checked := make(map[string]bool)
	for i, event := range w.events {
		if event.Type != domain.EventTypeList || sc.index[event.Slot] != tokenID || checked[event.Account] {
			continue
		}
		checked[event.Account] = true

		if claimedAfter(w.events[:i], event.Slot, event.Account) {
			continue
		}
		if listing, ok := s.liveListing(ctx, sc, event, w); ok {
			return listing, nil
		}
	}

	return nil, domain.ErrListingNotFound
}

// ScanHistory returns the events of account's window merged with the transfers other
// accounts addressed to it, newest first
func (s *Scanner) ScanHistory(ctx context.Context, account string) ([]domain.LedgerEvent, error) {
	timer := prometheus.NewTimer(metrics.ScanDuration.WithLabelValues("history"))
	defer timer.ObserveDuration()

	sc := s.newScan()
	own, err := sc.window(ctx, account, account)
	if err != nil {
		return nil, err
	}
	network, err := sc.window(ctx, "", account)
	if err != nil {
		return nil, err
	}

	events := append([]domain.LedgerEvent(nil), own.events...)
	for _, event := range network.events {
		if event.Type == domain.EventTypeTransferReceived && event.Account != account {
			events = append(events, event)
		}
	}
	events = lo.UniqBy(events, func(e domain.LedgerEvent) string { return e.OperationID })

	for i := range events {
		if events[i].TokenID == "" && events[i].Slot != "" {
			if token, ok := sc.index[events[i].Slot]; ok {
				events[i].TokenID = token
			}
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})
	return events, nil
}

// ScanNetworkEvents returns the classified events of the network window with token
// identifiers resolved where the window allows it
func (s *Scanner) ScanNetworkEvents(ctx context.Context) ([]domain.LedgerEvent, error) {
	timer := prometheus.NewTimer(metrics.ScanDuration.WithLabelValues("network"))
	defer timer.ObserveDuration()

	sc := s.newScan()
	w, err := sc.window(ctx, "", "")
	if err != nil {
		return nil, err
	}

	events := make([]domain.LedgerEvent, len(w.events))
	copy(events, w.events)
	for i := range events {
		if events[i].TokenID == "" && events[i].Slot != "" {
			events[i].TokenID = sc.index[events[i].Slot]
		}
	}
	return events, nil
}

// liveListing confirms a historical list event against the seller's current entries
func (s *Scanner) liveListing(ctx context.Context, sc *scan, event domain.LedgerEvent, w *window) (*domain.ListingRecord, bool) {
	token, ok := sc.tokenFor(ctx, event.Slot, w.related(event)...)
	if !ok {
		logger.WarnCtx(ctx, "dropping unresolved listing", zap.String("slot", event.Slot), logger.Account(event.Account))
		return nil, false
	}

	seller, err := sc.account(ctx, event.Account)
	if err != nil {
		logger.WarnCtx(ctx, "failed to load seller", logger.Account(event.Account), zap.Error(err))
		return nil, false
	}

	price, listed := s.storage.ListingFromEntries(seller, token)
	if !listed {
		return nil, false
	}
	held, err := sc.holds(ctx, event.Account, token)
	if err != nil {
		logger.WarnCtx(ctx, "failed to confirm seller holds the token", logger.Account(event.Account), zap.Error(err))
		return nil, false
	}
	if !held {
		return nil, false
	}

	return &domain.ListingRecord{
		TokenID: token,
		Slot:    event.Slot,
		Price:   price,
		Seller:  event.Account,
	}, true
}

// claimedAfter reports whether newer events hold an ownership claim of slot by another account
func claimedAfter(newer []domain.LedgerEvent, slot, account string) bool {
	return lo.ContainsBy(newer, func(e domain.LedgerEvent) bool {
		return e.Type == domain.EventTypeClaim && e.Slot == slot && e.Account != account
	})
}

// soldTo returns the account claiming any of slots after account last minted or claimed it.
// events are newest first.
func soldTo(events []domain.LedgerEvent, account string, slots ...string) (string, bool) {
	for _, e := range events {
		if !lo.Contains(slots, e.Slot) || e.Type != domain.EventTypeClaim && e.Type != domain.EventTypeMint {
			continue
		}
		if e.Account == account {
			return "", false
		}
		if e.Type == domain.EventTypeClaim {
			return e.Account, true
		}
	}
	return "", false
}

// resolveMetadata resolves each distinct token once on the worker pool
func (s *Scanner) resolveMetadata(ctx context.Context, tokens []domain.TokenID) map[domain.TokenID]*domain.MetadataRecord {
	resolved := make(map[domain.TokenID]*domain.MetadataRecord)
	unique := lo.Uniq(tokens)
	if len(unique) == 0 {
		return resolved
	}

	group := s.pool.NewGroup()
	for _, token := range unique {
		group.Submit(func() *resolvedMetadata {
			record, err := s.resolver.Resolve(ctx, string(token))
			return &resolvedMetadata{token: token, record: record, err: err}
		})
	}

	results, err := group.Wait()
	if err != nil {
		logger.ErrorCtx(ctx, err, zap.String("stage", "metadata resolution"))
	}

	for _, r := range results {
		if r == nil {
			continue
		}
		if r.err != nil {
			metrics.MetadataResolutions.WithLabelValues("failed").Inc()
			logger.WarnCtx(ctx, "dropping token with unresolvable metadata", zap.String("token", string(r.token)), zap.Error(r.err))
			continue
		}
		metrics.MetadataResolutions.WithLabelValues("resolved").Inc()
		resolved[r.token] = r.record
	}
	return resolved
}

func (s *Scanner) withMetadata(ctx context.Context, records []domain.NFTRecord) []domain.NFTRecord {
	tokens := lo.Map(records, func(r domain.NFTRecord, _ int) domain.TokenID { return r.TokenID })
	resolved := s.resolveMetadata(ctx, tokens)

	return lo.FilterMap(records, func(r domain.NFTRecord, _ int) (domain.NFTRecord, bool) {
		record, ok := resolved[r.TokenID]
		r.Metadata = record
		return r, ok
	})
}

func (s *Scanner) listingsWithMetadata(ctx context.Context, listings []domain.ListingRecord) []domain.ListingRecord {
	tokens := lo.Map(listings, func(l domain.ListingRecord, _ int) domain.TokenID { return l.TokenID })
	resolved := s.resolveMetadata(ctx, tokens)

	return lo.FilterMap(listings, func(l domain.ListingRecord, _ int) (domain.ListingRecord, bool) {
		record, ok := resolved[l.TokenID]
		l.Metadata = record
		return l, ok
	})
}
