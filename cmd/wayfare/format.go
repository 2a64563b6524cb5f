// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/wayfare/apiclient"
)

// money formats minor units, e.g. 123456 USD as "USD 1,234.56".
func money(minor int64, currency string) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s %s%s.%02d", currency, sign, humanize.Comma(minor/100), minor%100)
}

func when(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return fmt.Sprintf("%s (%s)", t.Format("2 Jan 2006"), humanize.Time(t))
}

func stars(rating float64) string {
	if rating <= 0 {
		return "-"
	}
	return humanize.FtoaWithDigits(rating, 1) + "★"
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func row(tw *tabwriter.Writer, cols ...string) {
	fmt.Fprintln(tw, strings.Join(cols, "\t"))
}

// offline reports whether err is a transport failure for which cached data
// may be shown instead.
func offline(err error) bool {
	return apiclient.IsNetwork(err)
}

func printOfflineNote(w io.Writer) {
	fmt.Fprintln(w, "(offline, showing cached data)")
}
