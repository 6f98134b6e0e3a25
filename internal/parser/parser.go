// Package parser turns a raw brokerage transaction export into typed
// transactions. The export is section-tagged text: lines carrying the
// "Transaction History,Header," marker bind column names, lines carrying
// "Transaction History,Data," bind one row each, and everything else is
// ignored. Parsing is best-effort and never fails: malformed rows are dropped
// with a log line and malformed numbers degrade to zero.
package parser

import (
	"bufio"
	"encoding/csv"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jfeld/wheelhouse/internal/models"
)

const (
	headerMarker = "Transaction History,Header,"
	dataMarker   = "Transaction History,Data,"
)

// Date formats accepted by the export, tried in order.
var dateLayouts = []string{"2006-01-02", "01/02/2006"}

// Currency pairs such as AUD.USD mark forex conversion rows.
var fxPairPattern = regexp.MustCompile(`^[A-Z]{3}\.[A-Z]{3}$`)

// Result is the immutable outcome of one parse call.
type Result struct {
	Transactions []models.Transaction
	Accounts     []string
	FXRates      map[string]float64
}

// Parser parses brokerage exports. It holds no per-call state, so a single
// instance is safe for concurrent use; every Parse call keeps its scan state
// in locals and returns a fresh Result.
type Parser struct {
	log *logrus.Logger
}

// New returns a parser logging through the supplied logger, or the standard
// logrus logger when nil.
func New(log *logrus.Logger) *Parser {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Parser{log: log}
}

// Parse scans the raw export text and returns every recognizable transaction.
// It never returns nil and never panics; if no header section exists the
// Result is simply empty.
func (p *Parser) Parse(raw string) *Result {
	res := &Result{FXRates: make(map[string]float64)}
	accounts := make(map[string]struct{})

	var header []string

	sc := bufio.NewScanner(strings.NewReader(raw))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.Contains(line, headerMarker):
			if fields := sectionFields(line, headerMarker); len(fields) > 0 {
				header = fields
			}
		case strings.Contains(line, dataMarker):
			if header == nil {
				continue
			}
			fields := sectionFields(line, dataMarker)
			if len(fields) == 0 {
				continue
			}
			tx, ok := p.parseRow(bindRow(header, fields), res)
			if !ok {
				continue
			}
			if tx.Account != "" {
				accounts[tx.Account] = struct{}{}
			}
			res.Transactions = append(res.Transactions, tx)
		}
	}

	res.Accounts = make([]string, 0, len(accounts))
	for a := range accounts {
		res.Accounts = append(res.Accounts, a)
	}
	sort.Strings(res.Accounts)
	return res
}

// sectionFields extracts the payload tokens of a tagged line: everything
// after the section label and row kind. Quoted commas survive because each
// line runs through a CSV reader.
func sectionFields(line, marker string) []string {
	i := strings.Index(line, marker)
	if i < 0 {
		return nil
	}
	rec := splitRow(line[i:])
	if len(rec) < 3 {
		return nil
	}
	return rec[2:]
}

func splitRow(s string) []string {
	r := csv.NewReader(strings.NewReader(s))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rec, err := r.Read()
	if err != nil {
		return strings.Split(s, ",")
	}
	return rec
}

// bindRow aligns row values to header names positionally. Missing trailing
// fields default to the empty string.
func bindRow(header, fields []string) map[string]string {
	row := make(map[string]string, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if i < len(fields) {
			row[name] = strings.TrimSpace(fields[i])
		} else {
			row[name] = ""
		}
	}
	return row
}

func (p *Parser) parseRow(row map[string]string, res *Result) (models.Transaction, bool) {
	dateStr := row["Date"]
	if dateStr == "" || dateStr == "Date" {
		return models.Transaction{}, false
	}
	typeStr := row["Transaction Type"]
	if typeStr == "Statement" || typeStr == "Summary" {
		return models.Transaction{}, false
	}

	date, err := parseDate(dateStr)
	if err != nil {
		p.log.WithFields(logrus.Fields{
			"date":   dateStr,
			"symbol": row["Symbol"],
		}).Warn("dropping row with unparsable date")
		return models.Transaction{}, false
	}

	tx := models.Transaction{
		ID:          uuid.NewString(),
		Date:        date,
		DateTime:    date,
		Account:     row["Account"],
		Description: row["Description"],
		Type:        parseType(typeStr),
		Symbol:      row["Symbol"],
		Quantity:    parseNumber(row["Quantity"]),
		Price:       parseNumber(row["Price"]),
		GrossAmount: parseNumber(row["Gross Amount"]),
		Commission:  parseNumber(row["Commission"]),
		NetAmount:   parseNumber(row["Net Amount"]),
		Currency:    defaultCurrency(row["Currency"]),
	}

	symbol := tx.Symbol
	switch {
	case fxPairPattern.MatchString(symbol):
		tx.Type = models.TypeForex
		tx.Underlying = symbol
		if tx.Price != 0 {
			res.FXRates[symbol] = tx.Price
		}
	case looksLikeOption(symbol):
		if od, ok := DecodeOptionSymbol(symbol); ok {
			tx.IsOption = true
			tx.Option = &od
			tx.Underlying = od.Underlying
		} else {
			// Decode failure is not an error: treat as equity.
			tx.Underlying = baseSymbol(symbol)
		}
	default:
		tx.Underlying = baseSymbol(symbol)
	}

	return tx, true
}

// looksLikeOption is the cheap pre-filter before attempting a full decode.
func looksLikeOption(symbol string) bool {
	return len(symbol) > 10 && strings.ContainsAny(symbol, "CP")
}

func baseSymbol(symbol string) string {
	if fields := strings.Fields(symbol); len(fields) > 0 {
		return fields[0]
	}
	return symbol
}

func parseType(s string) models.TransactionType {
	lower := strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(lower, "buy"):
		return models.TypeBuy
	case strings.HasPrefix(lower, "sell"):
		return models.TypeSell
	case strings.HasPrefix(lower, "assign"):
		return models.TypeAssignment
	case strings.HasPrefix(lower, "exercise"):
		return models.TypeExercise
	case strings.Contains(lower, "forex"):
		return models.TypeForex
	default:
		return models.TypeOther
	}
}

func parseDate(s string) (time.Time, error) {
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// parseNumber is tolerant by design: thousands separators are stripped, a
// bare "-" means zero, and anything unparsable degrades to zero.
func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return 0
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func defaultCurrency(s string) string {
	if s == "" {
		return "USD"
	}
	return s
}
