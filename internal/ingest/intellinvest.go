// Package ingest imports portfolio holdings from IntelliInvest exports:
// CSV files saved from the "Все бумаги" sheet and public portfolio pages.
package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"portfolio-intel/internal/logger"
	"portfolio-intel/internal/store"
	"portfolio-intel/internal/types"
)

// SourceFile marks holdings imported from an exported file.
const SourceFile = "intellinvest"

// Column indices in the export (0-based):
// 0 type, 1 ticker, 2 name, 3 quantity, 4 average price,
// 6 invested value, 8 current value, 11 pnl value, 12 pnl %,
// 23 portfolio share %.
const (
	colType     = 0
	colTicker   = 1
	colName     = 2
	colQty      = 3
	colAvgPrice = 4
	colInvested = 6
	colCurrent  = 8
	colPnl      = 11
	colPnlPct   = 12
	colSharePct = 23
)

var assetTypeNames = map[string]string{
	"Акции":        "stock",
	"Актив":        "asset",
	"Облигации":    "bond",
	"ПИФ":          "mutual_fund",
	"ETF":          "etf",
	"Криптовалюта": "crypto",
	"Деньги":       "cash",
	"Депозит":      "deposit",
	"Фьючерс":      "futures",
	"NFT":          "nft",
}

// ParseCSV reads an IntelliInvest export. The first skipRows rows are
// headers; rows without a ticker and repeated header rows are dropped.
// All monetary values in the export are in RUB.
func ParseCSV(r io.Reader, skipRows int) ([]types.Holding, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(rows) > skipRows {
		rows = rows[skipRows:]
	} else {
		rows = nil
	}

	asOf := time.Now()
	var holdings []types.Holding
	for _, row := range rows {
		ticker := strings.TrimSpace(cell(row, colTicker))
		if ticker == "" || ticker == "Тикер" {
			continue
		}

		assetTypeRaw := strings.TrimSpace(cell(row, colType))
		assetType, ok := assetTypeNames[assetTypeRaw]
		if !ok {
			if assetTypeRaw == "" {
				assetType = "unknown"
			} else {
				assetType = strings.ToLower(assetTypeRaw)
			}
		}

		holdings = append(holdings, types.Holding{
			AsOf:          asOf,
			Source:        SourceFile,
			Ticker:        ticker,
			Name:          strings.TrimSpace(cell(row, colName)),
			Qty:           number(cell(row, colQty)),
			AvgPrice:      number(cell(row, colAvgPrice)),
			InvestedValue: number(cell(row, colInvested)),
			CurrentValue:  number(cell(row, colCurrent)),
			PnlValue:      number(cell(row, colPnl)),
			PnlPct:        number(cell(row, colPnlPct)),
			SharePct:      number(cell(row, colSharePct)),
			AssetType:     assetType,
			Currency:      "RUB",
		})
	}

	return holdings, nil
}

// SyncFromCSV parses an export and replaces all previously imported
// file-sourced holdings with the new set.
func SyncFromCSV(ctx context.Context, st *store.Store, r io.Reader, skipRows int) (*types.SyncResult, error) {
	holdings, err := ParseCSV(r, skipRows)
	if err != nil {
		return nil, err
	}
	if len(holdings) == 0 {
		return &types.SyncResult{
			Status:  "error",
			Message: "No holdings found in file",
			Source:  SourceFile,
		}, nil
	}

	if err := st.ReplaceHoldings(ctx, SourceFile, holdings); err != nil {
		return nil, err
	}

	asOf := holdings[0].AsOf
	logger.Info(ctx, "Portfolio synced", "source", SourceFile, "holdings", len(holdings))
	return &types.SyncResult{
		Status: "success",
		Count:  len(holdings),
		AsOf:   &asOf,
		Source: SourceFile,
	}, nil
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

// number parses a numeric cell, tolerating spaces, currency symbols and
// comma decimal separators. Unparseable cells read as zero.
func number(s string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',', r == '-':
			return r
		default:
			return -1
		}
	}, s)
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}
