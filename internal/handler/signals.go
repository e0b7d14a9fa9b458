package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mgjeanpierre85-cpu/ml-forex/internal/repository"
	"github.com/mgjeanpierre85-cpu/ml-forex/internal/service"
)

const predictionExit = "EXIT"

type SignalHandler struct {
	Service *service.SignalService
	Repo    repository.Repository
	Logger  *zap.Logger
}

func (h *SignalHandler) Register(r *gin.Engine) {
	r.POST("/predict", h.predict)
	r.POST("/close-signal", h.closeSignal)
	r.GET("/signals", h.listSignals)
}

// predictRequest is the webhook body the charting platform posts. Prices
// arrive as JSON numbers or strings depending on the alert template, and
// timeframe may be numeric; flexString and decimal absorb both.
type predictRequest struct {
	Ticker     string           `json:"ticker"`
	Prediction string           `json:"prediction"`
	OpenPrice  *decimal.Decimal `json:"open_price"`
	SL         *decimal.Decimal `json:"sl"`
	TP         *decimal.Decimal `json:"tp"`
	ClosePrice *decimal.Decimal `json:"close_price"`
	Timeframe  flexString       `json:"timeframe"`
	Time       string           `json:"time"`
	SignalID   string           `json:"signal_id"`
}

type closeRequest struct {
	Ticker     string           `json:"ticker"`
	ClosePrice *decimal.Decimal `json:"close_price"`
	SignalID   string           `json:"signal_id"`
	Time       string           `json:"time"`
}

func (h *SignalHandler) predict(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil || len(raw) == 0 {
		badRequest(c, "empty or unreadable body")
		return
	}
	var req predictRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		badRequest(c, "invalid json: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Ticker) == "" {
		badRequest(c, "ticker is required")
		return
	}

	prediction := strings.ToUpper(strings.TrimSpace(req.Prediction))
	if prediction == predictionExit {
		// An EXIT alert is a close event wearing the predict shape.
		closePrice := req.ClosePrice
		if closePrice == nil {
			closePrice = req.OpenPrice
		}
		h.doClose(c, req.Ticker, closePrice, req.SignalID)
		return
	}
	if prediction != "BUY" && prediction != "SELL" {
		badRequest(c, "prediction must be BUY, SELL or EXIT")
		return
	}
	if req.OpenPrice == nil || req.SL == nil || req.TP == nil {
		badRequest(c, "open_price, sl and tp are required")
		return
	}

	sig, err := h.Service.Open(c.Request.Context(), service.OpenRequest{
		Ticker:     req.Ticker,
		Prediction: prediction,
		OpenPrice:  *req.OpenPrice,
		SL:         *req.SL,
		TP:         *req.TP,
		Timeframe:  string(req.Timeframe),
		SignalTime: req.Time,
		SignalID:   req.SignalID,
		RawPayload: raw,
	})
	if err != nil {
		h.Logger.Error("open signal failed", zap.String("ticker", req.Ticker), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "signal_id": sig.SignalID})
}

func (h *SignalHandler) closeSignal(c *gin.Context) {
	var req closeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Ticker) == "" {
		badRequest(c, "ticker is required")
		return
	}
	h.doClose(c, req.Ticker, req.ClosePrice, req.SignalID)
}

func (h *SignalHandler) doClose(c *gin.Context, ticker string, closePrice *decimal.Decimal, signalID string) {
	if closePrice == nil {
		badRequest(c, "close_price is required")
		return
	}

	out, err := h.Service.Close(c.Request.Context(), service.CloseRequest{
		Ticker:     ticker,
		ClosePrice: *closePrice,
		SignalID:   signalID,
	})
	if errors.Is(err, repository.ErrSignalNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no pending signal for " + strings.ToUpper(strings.TrimSpace(ticker))})
		return
	}
	if err != nil {
		h.Logger.Error("close signal failed", zap.String("ticker", ticker), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"result": out.Result,
		"pips":   out.Pips,
	})
}

func (h *SignalHandler) listSignals(c *gin.Context) {
	params := repository.ListSignalsParams{
		Limit:  intQuery(c, "limit", 50),
		Offset: intQuery(c, "offset", 0),
	}
	if ticker := strings.TrimSpace(c.Query("ticker")); ticker != "" {
		params.Ticker = &ticker
	}
	if result := strings.TrimSpace(c.Query("result")); result != "" {
		params.Result = &result
	}

	items, err := h.Repo.ListSignals(c.Request.Context(), params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "detail": err.Error()})
		return
	}
	total, err := h.Repo.CountSignals(c.Request.Context(), params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"total":   total,
		"signals": items,
	})
}

func badRequest(c *gin.Context, detail string) {
	c.JSON(http.StatusBadRequest, gin.H{"status": "error", "detail": detail})
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// flexString accepts both a JSON string and a JSON number, since alert
// templates disagree on how to quote the timeframe.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}
