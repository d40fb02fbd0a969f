package report

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/mauv0809/rating-ledger/internal/ledger"
)

// join separates fields with single spaces. Empty fields are kept, so a
// scheduled match in a history still yields its separators.
func join(fields ...string) string {
	return strings.Join(fields, " ")
}

// PlayerLine renders "ID Name YYYYMMDD Rating Region".
func PlayerLine(p ledger.Player) string {
	return join(p.ID, p.Name, p.Birthdate.Format(DayLayout), strconv.Itoa(p.Rating), p.Region)
}

// RangeLine renders "Start End HostName GuestName H|G".
func RangeLine(r RangeRow) string {
	return join(r.Start.Format(TimestampLayout), r.End.Format(TimestampLayout), r.HostName, r.GuestName, r.Winner())
}

// RankingLine renders "ID Name Wins Losses Percent".
func RankingLine(r RankingRow) string {
	return join(r.PlayerID, r.Name, strconv.Itoa(r.Wins), strconv.Itoa(r.Losses), r.PercentString())
}

// PercentString renders the win percentage with four decimals, rounding the
// exact binary value half away from zero.
func (r RankingRow) PercentString() string {
	return RoundHalfUp(r.Percent, 4)
}

// RoundHalfUp formats x with the given number of decimals. Ties are decided on
// the exact value of the float, not its shortest decimal representation.
func RoundHalfUp(x float64, places int) string {
	return new(big.Rat).SetFloat64(x).FloatString(places)
}

// HistoryLines renders the header "ID Name" followed by one line per match:
// "Start End OpponentID OpponentName Result Post", with "inconsistent rating"
// appended where the rating chain breaks.
func HistoryLines(h *History) []string {
	lines := make([]string, 0, len(h.Rows)+1)
	lines = append(lines, join(h.Player.ID, h.Player.Name))
	for _, r := range h.Rows {
		end, post := "", ""
		if r.End != nil {
			end = r.End.Format(TimestampLayout)
		}
		if r.PostRating != nil {
			post = strconv.Itoa(*r.PostRating)
		}
		fields := []string{r.Start.Format(TimestampLayout), end, r.OpponentID, r.OpponentName, r.Result, post}
		if r.Inconsistent {
			fields = append(fields, "inconsistent rating")
		}
		lines = append(lines, join(fields...))
	}
	return lines
}
