// Package server 通过 HTTP 暴露布局、预览与导出，供浏览器前端或其他系统调用。
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ByLCY/pricelabel/binding"
	"github.com/ByLCY/pricelabel/document"
	"github.com/ByLCY/pricelabel/dsl"
	"github.com/ByLCY/pricelabel/internal/app"
	"github.com/ByLCY/pricelabel/label"
	"github.com/ByLCY/pricelabel/layout"
	"github.com/ByLCY/pricelabel/queue"
	"github.com/ByLCY/pricelabel/renderer"
	canvasrenderer "github.com/ByLCY/pricelabel/renderer/canvas"
)

// maxBodyBytes 限制请求体大小。
const maxBodyBytes = 4 << 20

const shutdownTimeout = 5 * time.Second

// Server 包装一个 app.Service。
type Server struct {
	svc    *app.Service
	logger *log.Logger
	router chi.Router
	now    func() time.Time
}

// New 创建服务并注册路由。logger 为 nil 时使用 log.Default()。
func New(svc *app.Service, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{svc: svc, logger: logger, now: time.Now}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/config", s.handleConfig)
		r.Post("/layout", s.handleLayout)
		r.Post("/preview", s.handlePreview)
		r.Post("/export", s.handleExport)
	})
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe 监听 addr，ctx 取消后优雅关闭。
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP 服务已启动", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("关闭 HTTP 服务失败: %w", err)
	}
	s.logger.Info("HTTP 服务已停止")
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		logger := s.logger.With("req", middleware.GetReqID(r.Context()))
		next.ServeHTTP(ww, r.WithContext(log.WithContext(r.Context(), logger)))
		logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start).Round(time.Millisecond),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	encodeWriteJSON(w, http.StatusOK, map[string]any{"status": "ok", "exporting": s.svc.Running()})
}

// Slider 描述一个可调布局字段及其界面范围。
type Slider struct {
	Field string  `json:"field"`
	Label string  `json:"label"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Step  float64 `json:"step"`
	Value float64 `json:"value"`
}

// ConfigResponse 是 GET /api/config 的响应。
type ConfigResponse struct {
	Layout   label.LayoutConfig `json:"layout"`
	Defaults label.LayoutConfig `json:"defaults"`
	Sliders  []Slider           `json:"sliders"`
	Label    [2]float64         `json:"label"`
	Page     [2]float64         `json:"page"`
	Sample   label.Content      `json:"sample"`
}

var sliderKeys = map[label.Field]string{
	label.FieldNameFontSize:   "nameFontSize",
	label.FieldNameHeight:     "nameHeight",
	label.FieldBarcodeHeight:  "barcodeHeight",
	label.FieldBarcodeYOffset: "barcodeYOffset",
	label.FieldBarcodeWidth:   "barcodeWidth",
	label.FieldPriceFontSize:  "priceFontSize",
	label.FieldPriceHeight:    "priceHeight",
	label.FieldPriceYOffset:   "priceYOffset",
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	cfg := s.svc.Settings().Layout
	resp := ConfigResponse{
		Layout:   cfg,
		Defaults: label.DefaultLayoutConfig(),
		Label:    [2]float64{layout.LabelWidth, layout.LabelHeight},
		Page:     [2]float64{renderer.PageWidth, renderer.PageHeight},
		Sample:   label.PreviewContent("", "", ""),
	}
	for _, f := range label.SliderFields {
		rg := label.SliderRanges[f]
		resp.Sliders = append(resp.Sliders, Slider{
			Field: sliderKeys[f],
			Label: f.String(),
			Min:   rg.Min,
			Max:   rg.Max,
			Step:  rg.Step,
			Value: cfg.Get(f),
		})
	}
	encodeWriteJSON(w, http.StatusOK, resp)
}

// PreviewRequest 是布局与预览接口的请求体。空字段用示例内容补齐，Config 缺省时使用配置文件中的布局。
type PreviewRequest struct {
	Content label.Content       `json:"content"`
	Config  *label.LayoutConfig `json:"config,omitempty"`
}

func (s *Server) decodePreview(w http.ResponseWriter, r *http.Request) (label.Content, label.LayoutConfig, bool) {
	var req PreviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, err.Error())
		return label.Content{}, label.LayoutConfig{}, false
	}
	cfg := s.svc.Settings().Layout
	if req.Config != nil {
		cfg = *req.Config
	}
	content := label.PreviewContent(req.Content.Name, req.Content.Price, req.Content.Barcode)
	return content, cfg, true
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	content, cfg, ok := s.decodePreview(w, r)
	if !ok {
		return
	}
	spec, err := s.svc.Engine().Compute(content, cfg, 1)
	if err != nil {
		writeErrorJSON(w, http.StatusInternalServerError, err.Error())
		return
	}
	var buf bytes.Buffer
	if err := layout.EncodeDebugJSON(&buf, &spec); err != nil {
		writeErrorJSON(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeBytes(w, "application/json", "", buf.Bytes())
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "png"
	}
	contentType := map[string]string{"png": "image/png", "pdf": "application/pdf"}[format]
	if contentType == "" {
		writeErrorJSON(w, http.StatusBadRequest, fmt.Sprintf("不支持的预览格式 %q", format))
		return
	}
	content, cfg, ok := s.decodePreview(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	opts := canvasrenderer.PreviewOptions{Format: format, Border: r.URL.Query().Get("border") == "1"}
	if err := s.svc.Renderer().WritePreview(r.Context(), &buf, content, cfg, opts); err != nil {
		writeErrorJSON(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeBytes(w, contentType, "", buf.Bytes())
}

// ExportRequest 是 JSON 形式的导出请求。
type ExportRequest struct {
	Products []ExportProduct     `json:"products"`
	Config   *label.LayoutConfig `json:"config,omitempty"`
}

// ExportProduct 与新增商品表单的字段一致。
type ExportProduct struct {
	Name     string `json:"name"`
	Price    string `json:"price"`
	Barcode  string `json:"barcode"`
	Quantity int    `json:"quantity"`
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	products, cfg, err := s.decodeExport(r)
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	logger := log.FromContext(r.Context())
	result, err := s.svc.Export(r.Context(), products, cfg, func(p int) {
		logger.Debug("export progress", "percent", p)
	})
	if err != nil {
		writeErrorJSON(w, exportStatus(err), err.Error())
		return
	}

	if result.Document == nil {
		writeErrorJSON(w, exportStatus(document.ErrNoPages), document.ErrNoPages.Error())
		return
	}
	var buf bytes.Buffer
	if err := result.Document.Write(&buf); err != nil {
		writeErrorJSON(w, exportStatus(err), err.Error())
		return
	}
	labels, _ := queue.Totals(products)
	name := binding.Filename(s.svc.Settings().Export.Filename, binding.ExportData(s.now(), result.Pages, labels))
	w.Header().Set("X-Pages", fmt.Sprint(result.Pages))
	w.Header().Set("X-Failed-Pages", fmt.Sprint(len(result.Failures)))
	writeBytes(w, "application/pdf", name, buf.Bytes())
}

// decodeExport 接受 JSON 请求体或 .labels 文本。
func (s *Server) decodeExport(r *http.Request) ([]label.Product, label.LayoutConfig, error) {
	base := s.svc.Settings().Layout
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "text/") || strings.HasPrefix(ct, "application/x-labels") {
		file, err := dsl.Parse(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			return nil, base, err
		}
		sheet, err := dsl.Load(file, base)
		if err != nil {
			return nil, base, err
		}
		return sheet.Products, sheet.Config, nil
	}

	var req ExportRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, base, err
	}
	cfg := base
	if req.Config != nil {
		cfg = *req.Config
	}
	products := make([]label.Product, 0, len(req.Products))
	for i, p := range req.Products {
		product, err := label.NewProduct(p.Name, p.Price, p.Barcode, p.Quantity)
		if err != nil {
			return nil, cfg, fmt.Errorf("第 %d 个商品: %w", i+1, err)
		}
		products = append(products, product)
	}
	return products, cfg, nil
}

func exportStatus(err error) int {
	switch {
	case errors.Is(err, app.ErrEmptyQueue):
		return http.StatusBadRequest
	case errors.Is(err, app.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	case errors.Is(err, document.ErrNoPages):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("无法解析请求体: %w", err)
	}
	return nil
}
