package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"go-fx-wallet"
	"go-fx-wallet/display"
	"go-fx-wallet/exchange"
	"go-fx-wallet/ratesapi"
)

// maxRequestSize caps how much of a request body is read
const maxRequestSize = 1 << 16

// Store the rates and holdings served, e.g. a *ratetable.Table
type Store interface {
	CurrentRates() []wallet.Rate
	Base() wallet.Currency
	UpdatedAt() time.Time
	Holdings() []wallet.Money
	SetHoldings(holdings ...wallet.Money)
}

// Refresher triggers a fetch of the latest rates, e.g. a *ratesapi.Refresher
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Server dependencies for HTTP Server functions
type Server struct {
	Service   exchange.Service
	Store     Store
	Refresher Refresher

	// Currency holdings are displayed in when a request does not name one
	Currency wallet.Currency
	// Precision of displayed values
	Precision int32

	router http.ServeMux
}

func NewServer(s exchange.Service, store Store, refresher Refresher, currency wallet.Currency, precision int32) *Server {
	server := &Server{
		Service:   s,
		Store:     store,
		Refresher: refresher,
		Currency:  currency,
		Precision: precision,
		router:    http.ServeMux{},
	}
	server.routes()
	return server
}

func (s *Server) routes() {
	s.router.Handle("/api/convert", allow(s.convert(), http.MethodPost))
	s.router.Handle("/api/rates", allow(s.rates(), http.MethodGet))
	s.router.Handle("/api/holdings", allow(s.holdings(), http.MethodGet, http.MethodPut))
	s.router.Handle("/api/refresh", allow(s.refresh(), http.MethodPost))
}

func (s *Server) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(rw, r)
}

// holding JSON form of wallet.Money
type holding struct {
	Currency      wallet.Currency `json:"currency"`
	Amount        wallet.Amount   `json:"amount"`
	WalletAddress string          `json:"walletAddress,omitempty"`
}

func (h holding) money() wallet.Money {
	if h.WalletAddress != "" {
		return wallet.NewCrypto(h.Amount, h.Currency, h.WalletAddress)
	}
	return wallet.NewFiat(h.Amount, h.Currency)
}

func toHolding(m wallet.Money) holding {
	return holding{Currency: m.Currency(), Amount: m.Value(), WalletAddress: m.WalletAddress()}
}

// convert produces HTTP handler for currency conversions
func (s *Server) convert() http.HandlerFunc {

	// request for unmarshalling JSON requests posted by clients
	type request struct {
		FromCurrency  wallet.Currency
		ToCurrency    wallet.Currency
		Amount        wallet.Amount
		WalletAddress string
		// Inverse converts with the stored ToCurrency -> FromCurrency rate instead
		Inverse bool
	}

	// response for marshalling JSON responses to return to clients
	type response struct {
		Amount   wallet.Amount   `json:"amount"`
		Currency wallet.Currency `json:"currency"`
		Original wallet.Amount   `json:"original"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		var request request
		if !decode(rw, r, &request) {
			return
		}
		if request.FromCurrency == "" || request.ToCurrency == "" {
			writeError(rw, http.StatusBadRequest, "missing currency")
			return
		}

		money := holding{Currency: request.FromCurrency, Amount: request.Amount, WalletAddress: request.WalletAddress}.money()
		convert := s.Service.Convert
		if request.Inverse {
			convert = s.Service.ConvertInverse
		}

		result, err := convert(r.Context(), money, request.ToCurrency)
		if errors.Is(err, wallet.ErrRateNotFound) {
			writeError(rw, http.StatusNotFound, "rate not found")
			return
		}
		if errors.Is(err, wallet.ErrOverflow) {
			writeError(rw, http.StatusUnprocessableEntity, "conversion overflow")
			return
		}
		if err != nil {
			writeError(rw, http.StatusInternalServerError, "failed conversion")
			return
		}

		encode(rw, http.StatusOK, &response{
			Amount:   result.Value(),
			Currency: result.Currency(),
			Original: request.Amount,
		})
	}
}

// rates produces HTTP handler listing the current rates
func (s *Server) rates() http.HandlerFunc {

	type rate struct {
		From  wallet.Currency `json:"from"`
		To    wallet.Currency `json:"to"`
		Value float64         `json:"value"`
	}

	type response struct {
		Base      wallet.Currency `json:"base"`
		UpdatedAt *time.Time      `json:"updatedAt,omitempty"`
		Rates     []rate          `json:"rates"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		var response response
		response.Base = s.Store.Base()
		if updatedAt := s.Store.UpdatedAt(); !updatedAt.IsZero() {
			response.UpdatedAt = &updatedAt
		}
		response.Rates = []rate{}
		for _, rt := range s.Store.CurrentRates() {
			response.Rates = append(response.Rates, rate{From: rt.From, To: rt.To, Value: rt.Value})
		}
		encode(rw, http.StatusOK, &response)
	}
}

// holdings produces HTTP handler showing holdings in a display currency (GET) or replacing them (PUT)
func (s *Server) holdings() http.HandlerFunc {

	type line struct {
		holding
		Converted *wallet.Amount `json:"converted,omitempty"`
		Display   string         `json:"display"`
	}

	type response struct {
		Currency wallet.Currency `json:"currency"`
		Holdings []line          `json:"holdings"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			var request []holding
			if !decode(rw, r, &request) {
				return
			}
			holdings := make([]wallet.Money, 0, len(request))
			for _, h := range request {
				if h.Currency == "" {
					writeError(rw, http.StatusBadRequest, "missing currency")
					return
				}
				if h.Amount < 0 {
					writeError(rw, http.StatusBadRequest, "negative amount")
					return
				}
				holdings = append(holdings, h.money())
			}
			s.Store.SetHoldings(holdings...)
		}

		currency := wallet.Currency(strings.ToUpper(r.URL.Query().Get("currency")))
		if currency == "" {
			currency = s.Currency
		}

		response := response{Currency: currency, Holdings: []line{}}
		for _, l := range display.Render(r.Context(), s.Service, s.Store.Holdings(), currency) {
			item := line{holding: toHolding(l.Holding), Display: l.Format(s.Precision)}
			if l.Available() {
				converted := l.Converted.Value()
				item.Converted = &converted
			}
			response.Holdings = append(response.Holdings, item)
		}
		encode(rw, http.StatusOK, &response)
	}
}

// refresh produces HTTP handler fetching the latest rates
func (s *Server) refresh() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		err := s.Refresher.Refresh(r.Context())
		switch {
		case err == nil:
			rw.WriteHeader(http.StatusNoContent)
		case errors.Is(err, ratesapi.ErrSuperseded):
			writeError(rw, http.StatusConflict, "refresh superseded")
		case errors.Is(err, wallet.ErrMalformedPayload):
			writeError(rw, http.StatusBadGateway, "malformed payload")
		default:
			writeError(rw, http.StatusBadGateway, "failed refresh")
		}
	}
}

// allow rejects requests with any other method
func allow(next http.HandlerFunc, methods ...string) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		for _, method := range methods {
			if r.Method == method {
				next(rw, r)
				return
			}
		}
		rw.Header().Set("Allow", strings.Join(methods, ", "))
		writeError(rw, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func decode(rw http.ResponseWriter, r *http.Request, v interface{}) bool {
	defer r.Body.Close()

	bytes, err := io.ReadAll(io.LimitReader(r.Body, maxRequestSize))
	if err != nil {
		writeError(rw, http.StatusBadRequest, "invalid request")
		return false
	}

	if err := json.Unmarshal(bytes, v); err != nil {
		writeError(rw, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

// encode writes v as the JSON response, or a 500 if v cannot be encoded
func encode(rw http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"failed json encoding"}`)
	}

	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_, _ = rw.Write(append(body, '\n'))
}

func writeError(rw http.ResponseWriter, status int, msg string) {
	encode(rw, status, map[string]string{"error": msg})
}
