package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"useradmin/internal/domain/models"
	"useradmin/internal/listing"
	"useradmin/internal/view"
)

func printUsers(w io.Writer, format string, page models.UserPage, p listing.Pagination) error {
	switch format {
	case "json":
		return writeJSON(w, page)
	case "table", "":
		tw := tablewriter.NewWriter(w)
		tw.SetHeader([]string{"ID", "Usuario", "Nombre", "Apellido", "Estado"})
		for _, r := range view.BuildRows(page.Data) {
			tw.Append([]string{strconv.FormatInt(r.ID, 10), r.Username, r.Name, r.Lastname, r.Status.Label})
		}
		tw.Render()
		pager := view.BuildPager(p, page.TotalUsers)
		fmt.Fprintf(w, "page %d/%d, %d users\n", pager.Page, pager.TotalPages, pager.Total)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func printUser(w io.Writer, format string, u models.User) error {
	if format == "json" {
		return writeJSON(w, u)
	}
	return printUsers(w, format, models.UserPage{Data: []models.User{u}, TotalUsers: 1}, listing.Pagination{Page: 1, PageSize: 1})
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
