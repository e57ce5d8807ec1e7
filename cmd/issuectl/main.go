// cmd/issuectl/main.go - консольный клиент Fix My City API
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"fix-my-city/internal/models"
	"fix-my-city/internal/services"
	"fix-my-city/pkg/client"
)

const usage = `Usage: issuectl [--server URL] [--token JWT] <command> [flags]

Commands:
  list                  список проблем (--filter key=value, --sort, --select, --page, --limit)
  get ID                одна проблема
  create                новая проблема (--title, --description, --category, --lng, --lat, --address)
  update ID             изменение (--status, --notes, --assign, --title, --description, --category)
  delete ID             удаление (только admin)
  upvote ID             поставить или снять голос
  comments ID           комментарии проблемы
  comment ID --text T   добавить комментарий
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	flagSet := pflag.NewFlagSet("issuectl", pflag.ContinueOnError)
	flagSet.SetInterspersed(false)
	flagSet.Usage = func() { fmt.Fprint(os.Stderr, usage) }

	var server, token string
	var timeout time.Duration
	flagSet.StringVar(&server, "server", envOr("FIXMYCITY_URL", "http://localhost:5000"), "адрес API")
	flagSet.StringVar(&token, "token", os.Getenv("FIXMYCITY_TOKEN"), "JWT токен")
	flagSet.DurationVar(&timeout, "timeout", 30*time.Second, "таймаут команды")

	if err := flagSet.Parse(args); err != nil {
		return err
	}

	rest := flagSet.Args()
	if len(rest) == 0 {
		flagSet.Usage()
		return errors.New("command required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	api := client.New(server, token)
	command, cmdArgs := rest[0], rest[1:]

	switch command {
	case "list":
		return listCmd(ctx, api, cmdArgs, out)
	case "get":
		id, err := singleID(command, cmdArgs)
		if err != nil {
			return err
		}
		issue, err := api.GetIssue(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(out, issue)
	case "create":
		return createCmd(ctx, api, cmdArgs, out)
	case "update":
		return updateCmd(ctx, api, cmdArgs, out)
	case "delete":
		id, err := singleID(command, cmdArgs)
		if err != nil {
			return err
		}
		if err := api.DeleteIssue(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(out, "deleted %s\n", id)
		return nil
	case "upvote":
		id, err := singleID(command, cmdArgs)
		if err != nil {
			return err
		}
		issue, err := api.ToggleUpvote(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(out, issue)
	case "comments":
		id, err := singleID(command, cmdArgs)
		if err != nil {
			return err
		}
		comments, err := api.ListComments(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(out, comments)
	case "comment":
		return commentCmd(ctx, api, cmdArgs, out)
	}

	flagSet.Usage()
	return fmt.Errorf("unknown command %q", command)
}

func listCmd(ctx context.Context, api *client.Client, args []string, out io.Writer) error {
	flagSet := pflag.NewFlagSet("list", pflag.ContinueOnError)
	filters := flagSet.StringArrayP("filter", "f", nil, "фильтр key=value, например status=reported или priority[gte]=5")
	sortBy := flagSet.String("sort", "", "поля сортировки через запятую, например -priority,createdAt")
	selectFields := flagSet.String("select", "", "возвращаемые поля через запятую")
	page := flagSet.Int("page", 0, "номер страницы")
	limit := flagSet.Int("limit", 0, "размер страницы")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	params, err := buildListParams(*filters, *sortBy, *selectFields, *page, *limit)
	if err != nil {
		return err
	}

	result, err := api.ListIssues(ctx, params)
	if err != nil {
		return err
	}
	return printJSON(out, result)
}

func buildListParams(filters []string, sortBy, selectFields string, page, limit int) (url.Values, error) {
	params := url.Values{}
	for _, f := range filters {
		key, value, ok := strings.Cut(f, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid filter %q, expected key=value", f)
		}
		params.Add(key, value)
	}
	if sortBy != "" {
		params.Set("sort", sortBy)
	}
	if selectFields != "" {
		params.Set("select", selectFields)
	}
	if page > 0 {
		params.Set("page", fmt.Sprint(page))
	}
	if limit > 0 {
		params.Set("limit", fmt.Sprint(limit))
	}
	return params, nil
}

func createCmd(ctx context.Context, api *client.Client, args []string, out io.Writer) error {
	flagSet := pflag.NewFlagSet("create", pflag.ContinueOnError)
	title := flagSet.String("title", "", "заголовок")
	description := flagSet.String("description", "", "описание")
	category := flagSet.String("category", string(models.CategoryOther), "категория")
	lng := flagSet.Float64("lng", 0, "долгота")
	lat := flagSet.Float64("lat", 0, "широта")
	address := flagSet.String("address", "", "адрес")
	photos := flagSet.StringSlice("photo", nil, "URL фотографий")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	in := services.CreateIssueInput{
		Title:       *title,
		Description: *description,
		Category:    models.IssueCategory(*category),
		Location:    services.LocationInput{Coordinates: []float64{*lng, *lat}},
		Address:     *address,
	}
	for _, p := range *photos {
		in.Photos = append(in.Photos, models.Photo{URL: p})
	}

	issue, err := api.CreateIssue(ctx, in)
	if err != nil {
		return err
	}
	return printJSON(out, issue)
}

func updateCmd(ctx context.Context, api *client.Client, args []string, out io.Writer) error {
	flagSet := pflag.NewFlagSet("update", pflag.ContinueOnError)
	status := flagSet.String("status", "", "новый статус")
	notes := flagSet.String("notes", "", "комментарий к смене статуса")
	assign := flagSet.String("assign", "", "исполнитель")
	title := flagSet.String("title", "", "заголовок")
	description := flagSet.String("description", "", "описание")
	category := flagSet.String("category", "", "категория")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	id, err := singleID("update", flagSet.Args())
	if err != nil {
		return err
	}

	in := buildUpdate(flagSet, *status, *notes, *assign, *title, *description, *category)
	issue, err := api.UpdateIssue(ctx, id, in)
	if err != nil {
		return err
	}
	return printJSON(out, issue)
}

// buildUpdate переносит только явно заданные флаги.
func buildUpdate(flagSet *pflag.FlagSet, status, notes, assign, title, description, category string) services.UpdateIssueInput {
	var in services.UpdateIssueInput
	if flagSet.Changed("status") {
		s := models.IssueStatus(status)
		in.Status = &s
	}
	if flagSet.Changed("notes") {
		in.StatusNotes = notes
	}
	if flagSet.Changed("assign") {
		in.AssignedTo = &assign
	}
	if flagSet.Changed("title") {
		in.Title = &title
	}
	if flagSet.Changed("description") {
		in.Description = &description
	}
	if flagSet.Changed("category") {
		c := models.IssueCategory(category)
		in.Category = &c
	}
	return in
}

func commentCmd(ctx context.Context, api *client.Client, args []string, out io.Writer) error {
	flagSet := pflag.NewFlagSet("comment", pflag.ContinueOnError)
	text := flagSet.String("text", "", "текст комментария")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	id, err := singleID("comment", flagSet.Args())
	if err != nil {
		return err
	}

	comment, err := api.AddComment(ctx, id, *text)
	if err != nil {
		return err
	}
	return printJSON(out, comment)
}

func singleID(command string, args []string) (string, error) {
	if len(args) != 1 || args[0] == "" {
		return "", fmt.Errorf("%s: expected exactly one issue id", command)
	}
	return args[0], nil
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
