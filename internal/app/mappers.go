package app

import (
	"strconv"
	"strings"

	"placepage/internal/domain"
)

/********** alias registries **********/

var hotelAliases = map[string][]string{
	"description": {"description", "markdown_description", "translations.description", "description_long"},
	"rating":      {"rating", "review_score", "rating.value", "scores.overall"},
	"reviews":     {"review_count", "reviews_count", "rating.count", "number_of_reviews"},
}

var reviewAliases = map[string][]string{
	"author":       {"author", "name", "userName", "reviewer", "reviewer.name"},
	"author_first": {"first_name", "firstname", "user.first_name", "user.firstName"},
	"author_last":  {"last_name", "lastname", "user.last_name", "user.lastName"},
	"positive":     {"pros", "positive", "positives", "review.pros"},
	"negative":     {"cons", "negative", "negatives", "review.cons"},
	"text":         {"text", "review_text", "review", "comment", "content", "body"},
	"date":         {"date", "created_at", "review_date", "published_at"},
	"rating":       {"rating", "rate", "score", "rating.value", "scores.overall", "average_score"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

func lookupStr(m map[string]any, path string) string {
	if s, ok := lookupAny(m, path).(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// firstAlias: first non-empty string for a named alias set.
func firstAlias(m map[string]any, aliases map[string][]string, key string) string {
	for _, p := range aliases[key] {
		if s := lookupStr(m, p); s != "" {
			return s
		}
	}
	return ""
}

// floatFlexible: number from several paths (float64/int/string like "8,0").
func floatFlexible(m map[string]any, paths ...string) (float64, bool) {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			return v, true
		case int:
			return float64(v), true
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// firstSlice returns the first non-empty list found at paths.
func firstSlice(m map[string]any, paths ...string) []any {
	for _, k := range paths {
		if raw, ok := lookupAny(m, k).([]any); ok && len(raw) > 0 {
			return raw
		}
	}
	return nil
}

// itemString accepts a plain string or an object with one of keys.
func itemString(it any, keys ...string) string {
	switch t := it.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		for _, k := range keys {
			if s := lookupStr(t, k); s != "" {
				return s
			}
		}
	}
	return ""
}

/********** hotel info mapper **********/

// mapHotelInfo folds a property payload and its reviews into the hotel
// section shown on the panel.
func mapHotelInfo(p map[string]any, reviews []map[string]any) domain.HotelInfo {
	info := domain.HotelInfo{
		Description: firstAlias(p, hotelAliases, "description"),
	}
	if f, ok := floatFlexible(p, hotelAliases["rating"]...); ok {
		info.Rating = strconv.FormatFloat(f, 'f', 1, 64)
	}

	for _, it := range firstSlice(p, "facilities", "amenities") {
		name := itemString(it, "name", "title")
		if name == "" {
			continue
		}
		key := ""
		if m, ok := it.(map[string]any); ok {
			key = itemString(m, "facility_id", "code", "key")
		}
		if key == "" {
			key = strings.ToLower(strings.ReplaceAll(name, " ", "_"))
		}
		info.Facilities = append(info.Facilities, domain.Facility{Key: key, Name: name})
	}

	for _, it := range firstSlice(p, "photos", "images") {
		small := itemString(it, "url", "src", "thumbnail")
		large := itemString(it, "hd_url", "large", "url", "src")
		if small == "" && large == "" {
			continue
		}
		if small == "" {
			small = large
		}
		info.Photos = append(info.Photos, domain.Image{SmallURL: small, LargeURL: large})
	}

	for _, it := range firstSlice(p, "nearby", "points_of_interest", "landmarks") {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		n := domain.NearbyObject{
			Category: firstAlias(m, map[string][]string{"c": {"category", "type"}}, "c"),
			Title:    firstAlias(m, map[string][]string{"t": {"name", "title"}}, "t"),
			Distance: lookupStr(m, "distance"),
		}
		if d, ok := floatFlexible(m, "distance"); ok && n.Distance == "" {
			n.Distance = strconv.FormatFloat(d, 'f', -1, 64) + " m"
		}
		n.Lat, _ = floatFlexible(m, "lat", "latitude", "location.lat")
		n.Lon, _ = floatFlexible(m, "lon", "lng", "longitude", "location.lon")
		if n.Title != "" {
			info.Nearby = append(info.Nearby, n)
		}
	}

	info.Reviews = mapReviews(reviews)
	if n, ok := floatFlexible(p, hotelAliases["reviews"]...); ok {
		info.ReviewsAmount = int(n)
	}
	if info.ReviewsAmount < len(info.Reviews) {
		info.ReviewsAmount = len(info.Reviews)
	}
	return info
}

/********** reviews mapper **********/

func mapReviews(in []map[string]any) []domain.Review {
	out := make([]domain.Review, 0, len(in))
	for _, r := range in {
		var rv domain.Review

		// Author → prefer single field; fallback to first + last.
		rv.Author = firstAlias(r, reviewAliases, "author")
		if rv.Author == "" {
			rv.Author = strings.TrimSpace(firstAlias(r, reviewAliases, "author_first") + " " +
				firstAlias(r, reviewAliases, "author_last"))
		}

		rv.Positive = firstAlias(r, reviewAliases, "positive")
		rv.Negative = firstAlias(r, reviewAliases, "negative")
		if rv.Positive == "" && rv.Negative == "" {
			rv.Positive = firstAlias(r, reviewAliases, "text")
		}
		rv.Date = firstAlias(r, reviewAliases, "date")
		rv.Rating, _ = floatFlexible(r, reviewAliases["rating"]...)

		if rv.Positive == "" && rv.Negative == "" && rv.Rating == 0 {
			continue
		}
		out = append(out, rv)
	}
	return out
}
