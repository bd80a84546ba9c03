package replay

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
)

func writeTable(w io.Writer, res *Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tMATCH\tSCORE\tMIN\tLEAGUE\tPICK\tCONF\tALERT")
	for i, p := range res.Predictions {
		pick := "-"
		if p.Recommendation != nil {
			pick = p.Recommendation.Market + " " + strconv.Itoa(int(p.Recommendation.Probability*100+0.5)) + "%"
		}
		alert := ""
		if p.Alert.Notify {
			alert = "yes"
		}
		fmt.Fprintf(tw, "%d\t%s vs %s\t%s\t%d'\t%s\t%s\t%d\t%s\n",
			i+1, p.HomeTeam, p.AwayTeam, p.Score, p.Minute, p.League, pick, p.Confidence, alert)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write table: %w", err)
	}
	s := res.Stats
	_, err := fmt.Fprintf(w, "\nfetched %d, with stats %d, processed %d, rejected %d, failed %d, served %d in %s\n",
		s.Fetched, s.WithStats, s.Processed, s.Rejected, s.Failed, s.Served, s.Duration)
	return err
}
