package preprocess

import (
	"regexp"
	"strconv"
	"strings"
)

var onesWords = []string{
	"", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine",
	"ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen", "sixteen",
	"seventeen", "eighteen", "nineteen",
}

var tensWords = []string{
	"", "", "twenty", "thirty", "forty", "fifty", "sixty", "seventy", "eighty", "ninety",
}

var scaleWords = []string{"", "thousand", "million", "billion", "trillion"}

func numberToWords(n int64) string {
	if n == 0 {
		return "zero"
	}

	negative := n < 0
	if negative {
		n = -n
	}

	var parts []string
	for scale := 0; n > 0; scale++ {
		group := n % 1000
		if group > 0 {
			words := groupToWords(int(group))
			if scale > 0 && scale < len(scaleWords) {
				words += " " + scaleWords[scale]
			}
			parts = append([]string{words}, parts...)
		}
		n /= 1000
	}

	result := strings.Join(parts, " ")
	if negative {
		result = "negative " + result
	}
	return result
}

func groupToWords(n int) string {
	switch {
	case n == 0:
		return ""
	case n < 20:
		return onesWords[n]
	case n < 100:
		if n%10 == 0 {
			return tensWords[n/10]
		}
		return tensWords[n/10] + " " + onesWords[n%10]
	default:
		hundreds := onesWords[n/100] + " hundred"
		if n%100 == 0 {
			return hundreds
		}
		return hundreds + " " + groupToWords(n%100)
	}
}

var numberRe = regexp.MustCompile(`\b\d{1,15}\b`)

func expandNumbers(text string) string {
	return numberRe.ReplaceAllStringFunc(text, func(match string) string {
		n, err := strconv.ParseInt(match, 10, 64)
		if err != nil {
			return match
		}
		return numberToWords(n)
	})
}

var currencyRe = regexp.MustCompile(`\$(\d+)(?:\.(\d{2}))?`)

func expandCurrency(text string) string {
	return currencyRe.ReplaceAllStringFunc(text, func(match string) string {
		parts := currencyRe.FindStringSubmatch(match)
		dollars, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return match
		}

		result := numberToWords(dollars) + " dollar"
		if dollars != 1 {
			result += "s"
		}

		if parts[2] != "" && parts[2] != "00" {
			cents, err := strconv.ParseInt(parts[2], 10, 64)
			if err != nil {
				return match
			}
			result += " and " + numberToWords(cents) + " cent"
			if cents != 1 {
				result += "s"
			}
		}
		return result
	})
}

var timeRe = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\s*(am|pm|AM|PM)?\b`)

func expandTime(text string) string {
	return timeRe.ReplaceAllStringFunc(text, func(match string) string {
		parts := timeRe.FindStringSubmatch(match)
		hour, err1 := strconv.ParseInt(parts[1], 10, 64)
		minute, err2 := strconv.ParseInt(parts[2], 10, 64)
		if err1 != nil || err2 != nil {
			return match
		}

		result := numberToWords(hour)
		switch {
		case minute == 0:
			if parts[3] == "" {
				result += " o'clock"
			}
		case minute < 10:
			result += " oh " + numberToWords(minute)
		default:
			result += " " + numberToWords(minute)
		}
		if parts[3] != "" {
			result += " " + strings.ToLower(parts[3])
		}
		return result
	})
}

var ordinalRe = regexp.MustCompile(`\b(\d+)(st|nd|rd|th)\b`)

var ordinalWords = map[int64]string{
	1: "first", 2: "second", 3: "third", 4: "fourth", 5: "fifth",
	6: "sixth", 7: "seventh", 8: "eighth", 9: "ninth", 10: "tenth",
	11: "eleventh", 12: "twelfth", 13: "thirteenth", 14: "fourteenth",
	15: "fifteenth", 16: "sixteenth", 17: "seventeenth", 18: "eighteenth",
	19: "nineteenth", 20: "twentieth", 30: "thirtieth", 40: "fortieth",
	50: "fiftieth", 60: "sixtieth", 70: "seventieth", 80: "eightieth",
	90: "ninetieth",
}

func expandOrdinals(text string) string {
	return ordinalRe.ReplaceAllStringFunc(text, func(match string) string {
		parts := ordinalRe.FindStringSubmatch(match)
		n, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return match
		}
		if word, ok := ordinalWords[n]; ok {
			return word
		}
		if n > 20 && n < 100 {
			if word, ok := ordinalWords[n%10]; ok && n%10 != 0 {
				return tensWords[n/10] + " " + word
			}
			if word, ok := ordinalWords[(n/10)*10]; ok {
				return word
			}
		}
		return numberToWords(n) + "th"
	})
}
