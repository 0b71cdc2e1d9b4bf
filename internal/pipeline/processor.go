// Package pipeline wires the stages into the two document flows: the
// rule-based legacy path and the model-assisted agent path, plus the
// shared repair, backfill, and batch drivers.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/jcastillo-osint/guardian-pipeline/constants"
	"github.com/jcastillo-osint/guardian-pipeline/internal/detect"
	"github.com/jcastillo-osint/guardian-pipeline/internal/extract"
	"github.com/jcastillo-osint/guardian-pipeline/internal/geocode"
	"github.com/jcastillo-osint/guardian-pipeline/internal/record"
	"github.com/jcastillo-osint/guardian-pipeline/internal/textclean"
)

// ErrEmptyText rejects documents whose extracted text is effectively blank.
var ErrEmptyText = errors.New("document text is empty")

// Processor runs the rule-based extraction flow for one document: detect,
// split when multi-case, extract, enrich, backfill criticals, geocode.
type Processor struct {
	logger    *slog.Logger
	geo       *geocode.Client
	doGeocode bool
}

func NewProcessor(logger *slog.Logger, geo *geocode.Client, doGeocode bool) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{logger: logger, geo: geo, doGeocode: doGeocode && geo != nil}
}

// Process turns raw document text into one record per case. A VSP bulletin
// yields one record per split block; everything else yields exactly one.
func (p *Processor) Process(ctx context.Context, rawText, sourcePath string, seq *Sequence) ([]*record.CaseRecord, error) {
	text := textclean.Prenormalize(rawText)
	if len(strings.TrimSpace(text)) < 10 {
		return nil, ErrEmptyText
	}

	source := detect.Source(text)
	p.logger.Debug("detect.source",
		slog.String("source_path", sourcePath),
		slog.String("source", source.String()))

	var recs []*record.CaseRecord
	if source == constants.SourceVSP {
		for _, block := range extract.SplitVSPCases(text) {
			rec := extract.ParseVSP(block, seq.Next())
			p.finish(ctx, rec, block, sourcePath)
			recs = append(recs, rec)
		}
	} else {
		rec := extract.ForSource(source)(text, seq.Next())
		p.finish(ctx, rec, text, sourcePath)
		recs = append(recs, rec)
	}
	return recs, nil
}

// finish applies the source-agnostic tail of the flow to one record.
func (p *Processor) finish(ctx context.Context, rec *record.CaseRecord, text, sourcePath string) {
	rec.SourcePath = sourcePath
	rec.FullText = text

	extract.Enrich(rec, text)

	// Criticals the extractor may have missed come from the hardened
	// text matchers; last_seen_ts stays "" when even those fail, so the
	// gap remains visible downstream.
	if rec.Temporal.LastSeenTS == "" {
		rec.Temporal.LastSeenTS = record.ParseLastSeenTS(text)
	}
	if rec.Demographic.Gender == "" {
		rec.Demographic.Gender = record.ParseGender(text)
	}

	if p.doGeocode {
		p.geocodeRecord(ctx, rec)
	}
}

// geocodeRecord fills placeholder coordinates from city/state, falling back
// to the free-text location when the structured pair resolves nowhere.
func (p *Processor) geocodeRecord(ctx context.Context, rec *record.CaseRecord) {
	if rec.Spatial.LastSeenLat != 0 || rec.Spatial.LastSeenLon != 0 {
		return
	}
	res := p.geo.LookupWithOverride(ctx, rec.Spatial.LastSeenCity, rec.Spatial.LastSeenState, "city_state")
	if !res.OK && rec.Spatial.LastSeenLocation != "" {
		parts := strings.SplitN(rec.Spatial.LastSeenLocation, ",", 2)
		city := strings.TrimSpace(parts[0])
		state := rec.Spatial.LastSeenState
		if len(parts) > 1 {
			state = strings.TrimSpace(parts[1])
		}
		res = p.geo.LookupWithOverride(ctx, city, state, "from_location")
	}
	if !res.OK {
		return
	}
	rec.Spatial.LastSeenLat = res.Lat
	rec.Spatial.LastSeenLon = res.Lon
	if res.City != "" && res.State != "" {
		rec.Spatial.LastSeenCity = res.City
		rec.Spatial.LastSeenState = res.State
	}
}
