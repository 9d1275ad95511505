package api

import (
	"fmt"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/makhin/gedsync/internal/domain"
	"github.com/makhin/gedsync/internal/engine"
	"github.com/makhin/gedsync/internal/gedcomload"
	"github.com/makhin/gedsync/internal/report"
	"github.com/makhin/gedsync/internal/store"
)

// StoreOpener builds the confirmed-mappings store for one compare request
// given the resolved ConfirmedMappingsPath, letting the caller pick a
// backend (file, Postgres, SQLite) the same way cmd/wavecompare does from
// its environment configuration.
type StoreOpener func(confirmedMappingsPath string) (store.ConfirmedMappingsStore, error)

// compareRequest is the JSON body of POST /api/v1/compare (§6 "Inputs").
// TreeLoader.load's {downloadPhotos} option has no HTTP analogue: both
// trees are read from the local filesystem the server process can see.
type compareRequest struct {
	SourcePath     string           `json:"sourcePath"`
	DestPath       string           `json:"destPath"`
	AnchorSourceID uuid.UUID        `json:"anchorSourceId"`
	AnchorDestID   uuid.UUID        `json:"anchorDestId"`
	Options        *optionsOverride `json:"options,omitempty"`
}

// optionsOverride carries only the CompareOptions fields a caller wants to
// override; unset fields fall back to the server's config-derived defaults.
type optionsOverride struct {
	MaxLevel               *int    `json:"maxLevel,omitempty"`
	ThresholdStrategy      *string `json:"thresholdStrategy,omitempty"`
	BaseThreshold          *int    `json:"baseThreshold,omitempty"`
	ResolveConflicts       *bool   `json:"resolveConflicts,omitempty"`
	Interactive            *bool   `json:"interactive,omitempty"`
	LowConfidenceThreshold *int    `json:"lowConfidenceThreshold,omitempty"`
	MinConfidenceThreshold *int    `json:"minConfidenceThreshold,omitempty"`
	MaxCandidates          *int    `json:"maxCandidates,omitempty"`
	ConfirmedMappingsPath  *string `json:"confirmedMappingsPath,omitempty"`
}

func (o *optionsOverride) apply(base domain.CompareOptions) domain.CompareOptions {
	if o == nil {
		return base
	}
	if o.MaxLevel != nil {
		base.MaxLevel = *o.MaxLevel
	}
	if o.ThresholdStrategy != nil {
		base.ThresholdStrategy = domain.ThresholdStrategy(*o.ThresholdStrategy)
	}
	if o.BaseThreshold != nil {
		base.BaseThreshold = *o.BaseThreshold
	}
	if o.ResolveConflicts != nil {
		base.ResolveConflicts = *o.ResolveConflicts
	}
	if o.Interactive != nil {
		base.Interactive = *o.Interactive
	}
	if o.LowConfidenceThreshold != nil {
		base.LowConfidenceThreshold = *o.LowConfidenceThreshold
	}
	if o.MinConfidenceThreshold != nil {
		base.MinConfidenceThreshold = *o.MinConfidenceThreshold
	}
	if o.MaxCandidates != nil {
		base.MaxCandidates = *o.MaxCandidates
	}
	if o.ConfirmedMappingsPath != nil {
		base.ConfirmedMappingsPath = *o.ConfirmedMappingsPath
	}
	return base
}

// compareResponse is the JSON body returned by POST /api/v1/compare
// (§6 "Outputs: CompareResult and HighConfidenceReport as JSON").
type compareResponse struct {
	CompareResult        domain.CompareResult       `json:"compareResult"`
	HighConfidenceReport domain.HighConfidenceReport `json:"highConfidenceReport"`
}

// handleCompare loads both trees, runs one full comparison, and builds the
// high-confidence report, all synchronously within the request.
func (s *Server) handleCompare(storeOpener StoreOpener) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req compareRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
		}
		if req.SourcePath == "" || req.DestPath == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "sourcePath and destPath are required")
		}

		ctx := c.Request().Context()

		srcTree, err := s.loadTree(req.SourcePath)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("loading source tree: %v", err))
		}
		destTree, err := s.loadTree(req.DestPath)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("loading destination tree: %v", err))
		}

		opts := req.Options.apply(s.config.CompareOptions())

		confirmedStore, err := storeOpener(opts.ConfirmedMappingsPath)
		if err != nil {
			return fmt.Errorf("opening confirmed-mappings store: %w", err)
		}

		eng := engine.New(srcTree.Graph, destTree.Graph, opts, s.matcher)
		eng.Store = confirmedStore

		result, err := eng.Run(ctx, req.AnchorSourceID, req.AnchorDestID)
		if err != nil {
			return err
		}

		builder := report.NewBuilder(srcTree.Graph, destTree.Graph, s.photo, opts.LowConfidenceThreshold)
		highConfidence := builder.Build(result.Mappings)

		return c.JSON(http.StatusOK, compareResponse{
			CompareResult:        result,
			HighConfidenceReport: highConfidence,
		})
	}
}

func (s *Server) loadTree(path string) (*gedcomload.LoadedTree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return s.loader.Load(f)
}
