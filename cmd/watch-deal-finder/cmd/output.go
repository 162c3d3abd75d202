package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	domain "watch-deal-finder/pkg/types"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func printListingsTable(listings []domain.Listing) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ITEM ID\tTITLE\tBRAND\tPRICE\tBIN\tTIME LEFT\n")
	for i := range listings {
		bin := "-"
		if listings[i].BuyItNowPrice != nil {
			bin = fmt.Sprintf("$%.2f", *listings[i].BuyItNowPrice)
		}
		timeLeft := "ended"
		if listings[i].TimeLeft != nil {
			timeLeft = *listings[i].TimeLeft
		}
		tw.writef("%s\t%s\t%s\t$%.2f\t%s\t%s\n",
			listings[i].ItemID,
			truncate(listings[i].Title, 40),
			listings[i].Brand,
			listings[i].CurrentPrice,
			bin,
			timeLeft,
		)
	}
	return tw.finish()
}

func printListingDetail(l *domain.Listing) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("Item ID:\t%s\n", l.ItemID)
	tw.writef("Title:\t%s\n", l.Title)
	tw.writef("Brand:\t%s\n", l.Brand)
	tw.writef("Price:\t$%.2f\n", l.CurrentPrice)
	if l.BuyItNowPrice != nil {
		tw.writef("Buy It Now:\t$%.2f\n", *l.BuyItNowPrice)
	}
	if l.TimeLeft != nil {
		tw.writef("Time Left:\t%s\n", *l.TimeLeft)
	} else {
		tw.writef("Time Left:\tended\n")
	}
	tw.writef("URL:\t%s\n", l.URL)
	tw.writef("First Seen:\t%s\n", l.FirstSeen.Format(time.RFC3339))
	tw.writef("Last Updated:\t%s\n", l.LastUpdated.Format(time.RFC3339))
	return tw.finish()
}

func printHistoryTable(history []domain.PriceObservation) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("TIMESTAMP\tPRICE\tCHANGE\n")
	for i := range history {
		change := "-"
		if history[i].PriceChange != nil {
			change = fmt.Sprintf("%+.2f", *history[i].PriceChange)
		}
		tw.writef("%s\t$%.2f\t%s\n",
			history[i].Timestamp.Format(time.RFC3339),
			history[i].Price,
			change,
		)
	}
	return tw.finish()
}

func printDealsTable(deals []domain.DealCandidate) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ITEM ID\tTITLE\tBRAND\tPRICE\tDROP\tOBS\tAVG SOLD\tPROFIT\n")
	for i := range deals {
		avgSold := "-"
		if deals[i].AvgSoldPrice != nil {
			avgSold = fmt.Sprintf("$%.2f", *deals[i].AvgSoldPrice)
		}
		profit := "-"
		if deals[i].PotentialProfitPercent != nil {
			profit = fmt.Sprintf("%.2f%%", *deals[i].PotentialProfitPercent)
		}
		tw.writef("%s\t%s\t%s\t$%.2f\t%.2f%%\t%d\t%s\t%s\n",
			deals[i].ItemID,
			truncate(deals[i].Title, 40),
			deals[i].Brand,
			deals[i].CurrentPrice,
			deals[i].PriceDropPercent,
			deals[i].ObservationCount,
			avgSold,
			profit,
		)
	}
	return tw.finish()
}

func printSoldTable(items []domain.SoldItem) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ITEM ID\tTITLE\tBRAND\tFINAL PRICE\tSOLD DATE\tCONDITION\n")
	for i := range items {
		condition := "-"
		if items[i].Condition != nil {
			condition = *items[i].Condition
		}
		tw.writef("%s\t%s\t%s\t$%.2f\t%s\t%s\n",
			items[i].ItemID,
			truncate(items[i].Title, 40),
			items[i].Brand,
			items[i].FinalPrice,
			items[i].SoldDate.Format("2006-01-02"),
			condition,
		)
	}
	return tw.finish()
}

func printBrandStats(stats *domain.BrandStats) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("Brand:\t%s\n", stats.Brand)
	tw.writef("Window:\t%d days\n", stats.WindowDays)
	tw.writef("\n")
	tw.writef("SEGMENT\tCOUNT\tAVG\tMIN\tMAX\n")
	writeAggregate(tw, "active listings", stats.ActiveListings)
	writeAggregate(tw, "sold items", stats.SoldItems)
	return tw.finish()
}

func writeAggregate(tw *tabWriter, label string, agg domain.PriceAggregate) {
	fmtPrice := func(p *float64) string {
		if p == nil {
			return "-"
		}
		return fmt.Sprintf("$%.2f", *p)
	}
	tw.writef("%s\t%d\t%s\t%s\t%s\n",
		label, agg.Count, fmtPrice(agg.AvgPrice), fmtPrice(agg.MinPrice), fmtPrice(agg.MaxPrice))
}
