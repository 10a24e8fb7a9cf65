package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/umamilabs/gurume/internal/catalog"
)

var (
	yenPattern  = regexp.MustCompile(`￥[\d,]+`)
	intPattern  = regexp.MustCompile(`\d+`)
	wardPattern = regexp.MustCompile(`東京都?([^市区町村]+区)`)
	areaPattern = regexp.MustCompile(`(新宿|新大久保|大久保|渋谷|恵比寿|池袋|品川|上野|神田|中野|高田馬場)`)
	datePattern = regexp.MustCompile(`(\d{4})年(\d{1,2})月(\d{1,2})日`)
)

// RestaurantID derives the stable catalog id from the canonical page URL, so
// re-scraping the same listing always lands on the same record.
func RestaurantID(pageURL string) string {
	sum := sha256.Sum256([]byte(pageURL))
	return hex.EncodeToString(sum[:])
}

// RecordFromRow maps one scraped directory row (keyed by CSV header) into a
// catalog record. Messy source fields degrade to absent, never to a guess.
func RecordFromRow(row map[string]string) (catalog.Record, error) {
	pageURL := strings.TrimSpace(row["Page_URL"])
	if pageURL == "" {
		return catalog.Record{}, fmt.Errorf("row has no page URL")
	}
	name := cleanText(row["Restaurant_name"])
	if name == "" {
		return catalog.Record{}, fmt.Errorf("row has no restaurant name")
	}

	rec := catalog.Record{
		RestaurantID:   RestaurantID(pageURL),
		Name:           name,
		PageURL:        pageURL,
		StarRating:     parseFloat(row["Star_rating"]),
		ReviewCount:    parseIntLoose(row["Number_Of_Reviewers"]),
		Categories:     splitCategories(row["Categories"]),
		Address:        cleanText(row["Address"]),
		Transportation: cleanText(row["Transportation"]),
		Seats:          parseIntLoose(row["Number_of_seats"]),
		Smoking:        cleanText(row["No_smoking_or_Smoking"]),
		WithChildren:   parseBoolJP(row["With_children"]),
		PrivateRoom:    parseBoolJP(row["Private_dining_room"]),
		Parking:        parseBoolJP(row["Parking_lot"]),
		OpeningDay:     parseDateJP(row["The_opening_day"]),
	}
	rec.Ward = parseWard(rec.Address)
	rec.AreaHint = areaHintFromTransport(rec.Transportation)
	rec.BudgetDinner, rec.BudgetLunch = parseBudget(row["Budget"])
	rec.RetrievalText = buildRetrievalText(rec, row)
	return rec, nil
}

// parseBudget splits the combined budget column, dinner band first, lunch
// band second: "￥3,000～￥3,999 ￥1,000～￥1,999", or "～￥999" for a
// ceiling-only band.
func parseBudget(s string) (dinner, lunch catalog.Budget) {
	parts := strings.Fields(s)
	if len(parts) > 0 {
		dinner = parseBudgetRange(parts[0])
	}
	if len(parts) > 1 {
		lunch = parseBudgetRange(parts[1])
	}
	return dinner, lunch
}

func parseBudgetRange(r string) catalog.Budget {
	var nums []int
	for _, m := range yenPattern.FindAllString(r, -1) {
		m = strings.ReplaceAll(strings.TrimPrefix(m, "￥"), ",", "")
		if n, err := strconv.Atoi(m); err == nil {
			nums = append(nums, n)
		}
	}
	if strings.Contains(r, "～") {
		switch {
		case len(nums) == 2:
			return catalog.Budget{Min: &nums[0], Max: &nums[1]}
		case len(nums) == 1 && strings.HasPrefix(r, "～"):
			zero := 0
			return catalog.Budget{Min: &zero, Max: &nums[0]}
		case len(nums) == 1:
			return catalog.Budget{Min: &nums[0]}
		}
		return catalog.Budget{}
	}
	if len(nums) > 0 {
		return catalog.Budget{Min: &nums[0], Max: &nums[0]}
	}
	return catalog.Budget{}
}

// parseBoolJP reads the directory's tri-state amenity fields. Anything that
// matches neither keyword set stays unknown.
func parseBoolJP(s string) *bool {
	yes := []string{"有", "可", "あり"}
	no := []string{"無", "不可", "なし"}
	for _, k := range yes {
		if strings.Contains(s, k) {
			// "不可" contains "可"; negatives win
			for _, n := range no {
				if strings.Contains(s, n) {
					v := false
					return &v
				}
			}
			v := true
			return &v
		}
	}
	for _, k := range no {
		if strings.Contains(s, k) {
			v := false
			return &v
		}
	}
	return nil
}

// parseDateJP reads dates written as "2024年12月21日" into ISO form.
// Calendar-invalid or unparseable input degrades to absent.
func parseDateJP(s string) string {
	m := datePattern.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	d, err := time.Parse("2006-1-2", fmt.Sprintf("%s-%s-%s", m[1], m[2], m[3]))
	if err != nil {
		return ""
	}
	return d.Format("2006-01-02")
}

func parseWard(address string) string {
	if m := wardPattern.FindStringSubmatch(address); m != nil {
		return m[1]
	}
	return ""
}

func areaHintFromTransport(s string) string {
	if m := areaPattern.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}

func splitCategories(s string) []string {
	var out []string
	for _, c := range strings.Split(s, "、") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

func parseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// parseIntLoose pulls the first digit run out of fields like "1,234人".
func parseIntLoose(s string) *int {
	m := intPattern.FindString(strings.ReplaceAll(s, ",", ""))
	if m == "" {
		return nil
	}
	v, err := strconv.Atoi(m)
	if err != nil {
		return nil
	}
	return &v
}

// buildRetrievalText assembles the Japanese blob the embedding pipeline
// encodes. It mixes structured record fields with free-text source columns
// that are not otherwise persisted.
func buildRetrievalText(rec catalog.Record, row map[string]string) string {
	var parts []string
	add := func(s string) {
		if s != "" {
			parts = append(parts, s)
		}
	}
	add(rec.Name)
	if len(rec.Categories) > 0 {
		add("カテゴリ: " + strings.Join(rec.Categories, ", "))
	}
	if rec.ReviewCount != nil && rec.StarRating != nil {
		add(fmt.Sprintf("レビュー数 %d 食べログ %.2f", *rec.ReviewCount, *rec.StarRating))
	}
	if rec.Address != "" {
		add("住所 " + rec.Address)
	}
	if rec.Transportation != "" {
		add("交通 " + rec.Transportation)
	}
	if v := cleanText(row["Operating_hours"]); v != "" {
		add("営業時間 " + v)
	}
	if v := cleanText(row["Space_and_facilities"]); v != "" {
		add("特徴 " + v)
	}
	if v := cleanText(row["Dishes"]); v != "" {
		add("料理 " + v)
	}
	if v := cleanText(row["Occasion"]); v != "" {
		add("シーン " + v)
	}
	if v := cleanText(row["With_children"]); v != "" {
		add("子供可 " + v)
	}
	if rec.Smoking != "" {
		add("喫煙 " + rec.Smoking)
	}
	return strings.Join(parts, " / ")
}

// cleanText flattens newlines and collapses whitespace runs.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
