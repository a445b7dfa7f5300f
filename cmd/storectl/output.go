package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"storelocator/internal/locator"
	"storelocator/internal/stores"

	"gopkg.in/yaml.v3"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

func writeOutput(w io.Writer, format string, v any, text func(io.Writer) error) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return text(w)
	}
}

func writeStoreTable(w io.Writer, list []stores.Store) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCITY\tDISTANCE\tTODAY")
	for _, s := range list {
		dist := locator.FormatDistance(s.Distance)
		if dist == "" {
			dist = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", s.ID, s.Name, s.City, dist, s.Hours)
	}
	return tw.Flush()
}

func writeStoreDetails(w io.Writer, s stores.Store, detailsURL string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", s.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", s.Name)
	fmt.Fprintf(tw, "Address:\t%s\n", locator.AddressLine(s))
	fmt.Fprintf(tw, "Phone:\t%s\n", s.Phone)
	fmt.Fprintf(tw, "Today's Hours:\t%s\n", s.Hours)
	if d := locator.FormatDistance(s.Distance); d != "" {
		fmt.Fprintf(tw, "Distance:\t%s\n", d)
	}
	if pos, ok := s.Position(); ok {
		fmt.Fprintf(tw, "Directions:\t%s\n", locator.DirectionsURL(pos.Lat, pos.Lng))
	}
	fmt.Fprintf(tw, "Details:\t%s\n", detailsURL)
	return tw.Flush()
}
