package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/AngelCh415/ROAS_GO/internal/columns"
	"github.com/AngelCh415/ROAS_GO/internal/config"
	"github.com/AngelCh415/ROAS_GO/internal/ingest"
	"github.com/AngelCh415/ROAS_GO/internal/models"
	"github.com/AngelCh415/ROAS_GO/internal/report"
	"github.com/AngelCh415/ROAS_GO/internal/telemetry"
	"github.com/AngelCh415/ROAS_GO/internal/utils"
)

func NewRouter(log *slog.Logger, cfg config.Config, etl *ingest.ETL, tel *telemetry.Collector) http.Handler {
	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(log))
	mux.Use(middleware.Recoverer)

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ready")) })
	mux.Method(http.MethodGet, "/metrics", tel.Handler())

	var limiter *rate.Limiter
	if cfg.RateLimit.PerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.PerSecond), cfg.RateLimit.Burst)
	}
	mux.With(utils.RateLimit(limiter)).Post("/v1/roas", roasHandler(log, cfg, etl))
	return mux
}

func roasHandler(log *slog.Logger, cfg config.Config, etl *ingest.ETL) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		prec, err := report.ParsePrecision(q.Get("precision"))
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		format := q.Get("format")
		switch format {
		case "", "json", "csv", "summary.csv":
		default:
			http.Error(w, fmt.Sprintf("unknown format %q", format), 400)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxUploadBytes)
		if err := r.ParseMultipartForm(cfg.MaxUploadBytes); err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				http.Error(w, "upload too large", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "multipart form required: "+err.Error(), 400)
			return
		}
		defer r.MultipartForm.RemoveAll()

		b, closeAll, err := batchFromForm(cfg, r.MultipartForm)
		defer closeAll()
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}

		res, err := etl.Run(r.Context(), b)
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}

		switch format {
		case "csv":
			w.Header().Set("Content-Type", "text/csv")
			w.Header().Set("Content-Disposition", `attachment; filename="roas_`+string(prec)+`.csv"`)
			if err := report.WriteCSV(w, res, prec); err != nil {
				log.Error("write csv", slog.String("rid", utils.RID(r.Context())), slog.String("err", err.Error()))
			}
		case "summary.csv":
			if res.Summary == nil {
				http.Error(w, "summary was not requested", 400)
				return
			}
			w.Header().Set("Content-Type", "text/csv")
			w.Header().Set("Content-Disposition", `attachment; filename="roas_summary.csv"`)
			if err := report.WriteSummaryCSV(w, res, prec); err != nil {
				log.Error("write summary csv", slog.String("rid", utils.RID(r.Context())), slog.String("err", err.Error()))
			}
		default:
			writeJSON(w, report.View(res, prec))
		}
	}
}

// batchFromForm opens the uploaded files and applies form overrides to the
// configured run options. The returned func closes every opened file.
func batchFromForm(cfg config.Config, form *multipart.Form) (ingest.Batch, func(), error) {
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	opts, err := cfg.Pipeline.Options()
	if err != nil {
		return ingest.Batch{}, closeAll, err
	}
	b := ingest.Batch{Options: opts}

	open := func(fhs []*multipart.FileHeader) ([]ingest.File, error) {
		out := make([]ingest.File, 0, len(fhs))
		for _, fh := range fhs {
			f, err := fh.Open()
			if err != nil {
				return nil, models.Malformed(fh.Filename, err)
			}
			opened = append(opened, f)
			out = append(out, ingest.File{Name: fh.Filename, Data: f})
		}
		return out, nil
	}
	if b.Cost, err = open(form.File["cost"]); err != nil {
		return b, closeAll, err
	}
	if b.Performance, err = open(form.File["performance"]); err != nil {
		return b, closeAll, err
	}
	if names := form.File["names"]; len(names) > 0 {
		fs, err := open(names[:1])
		if err != nil {
			return b, closeAll, err
		}
		b.Names = &fs[0]
	}

	if err := applyFormOptions(&b, form.Value); err != nil {
		return b, closeAll, err
	}
	return b, closeAll, nil
}

func applyFormOptions(b *ingest.Batch, values map[string][]string) error {
	get := func(k string) (string, bool) {
		v, ok := values[k]
		if !ok || len(v) == 0 {
			return "", false
		}
		return v[0], true
	}
	boolOpt := func(k string, dst *bool) error {
		s, ok := get(k)
		if !ok {
			return nil
		}
		v, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a boolean", models.ErrInvalidOptions, k, s)
		}
		*dst = v
		return nil
	}
	if err := boolOpt("allow_multiple_cost_files", &b.Options.AllowMultipleCostFiles); err != nil {
		return err
	}
	if err := boolOpt("enrich", &b.Options.EnrichmentEnabled); err != nil {
		return err
	}
	if err := boolOpt("summary", &b.Options.IncludeSummary); err != nil {
		return err
	}
	if s, ok := get("column_selection"); ok {
		sel, err := columns.ParseSelection(s)
		if err != nil {
			return err
		}
		b.Options.ColumnSelection = sel
	}

	// column.<table>.<role>=<column name>
	for k, v := range values {
		rest, ok := strings.CutPrefix(k, "column.")
		if !ok || len(v) == 0 {
			continue
		}
		kind, role, ok := strings.Cut(rest, ".")
		if !ok {
			return fmt.Errorf("%w: bad column override %q", models.ErrInvalidOptions, k)
		}
		switch models.TableKind(kind) {
		case models.KindCost, models.KindPerformance, models.KindNames:
		default:
			return fmt.Errorf("%w: unknown table %q in %q", models.ErrInvalidOptions, kind, k)
		}
		if _, ok := columns.Def(models.Role(role)); !ok {
			return fmt.Errorf("%w: unknown role %q in %q", models.ErrInvalidOptions, role, k)
		}
		if b.Options.Overrides == nil {
			b.Options.Overrides = map[models.TableKind]map[models.Role]string{}
		}
		if b.Options.Overrides[models.TableKind(kind)] == nil {
			b.Options.Overrides[models.TableKind(kind)] = map[models.Role]string{}
		}
		b.Options.Overrides[models.TableKind(kind)][models.Role(role)] = v[0]
	}
	return nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrMissingRequiredColumn):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrMalformedInput), errors.Is(err, models.ErrInvalidOptions):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}
