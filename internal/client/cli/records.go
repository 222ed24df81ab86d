package cli

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/iudanet/vitrina/internal/client/catalog"
	"github.com/iudanet/vitrina/internal/client/records"
	"github.com/iudanet/vitrina/internal/models"
)

// kindCommands describes how one entity kind is exposed on the command line.
type kindCommands[T models.Entity[T]] struct {
	service func(*catalog.Catalog) *records.Service[T]
	row     func(T) []string
	name    string
	plural  string
	header  []string
	aliases []string
}

func productCommands() kindCommands[models.Product] {
	return kindCommands[models.Product]{
		name:    models.KindProduct,
		plural:  "products",
		aliases: []string{"products"},
		service: func(c *catalog.Catalog) *records.Service[models.Product] { return c.Products },
		header:  []string{"ID", "NAME", "PRICE", "STOCK", "CATEGORY"},
		row: func(p models.Product) []string {
			return []string{p.ID, p.Name, p.Price.StringFixed(2), strconv.Itoa(p.Stock), p.CategoryID}
		},
	}
}

func categoryCommands() kindCommands[models.Category] {
	return kindCommands[models.Category]{
		name:    models.KindCategory,
		plural:  "categories",
		aliases: []string{"categories"},
		service: func(c *catalog.Catalog) *records.Service[models.Category] { return c.Categories },
		header:  []string{"ID", "NAME", "SLUG", "PARENT"},
		row: func(c models.Category) []string {
			return []string{c.ID, c.Name, c.Slug, c.ParentID}
		},
	}
}

func attributeCommands() kindCommands[models.Attribute] {
	return kindCommands[models.Attribute]{
		name:    models.KindAttribute,
		plural:  "attributes",
		aliases: []string{"attributes", "attr"},
		service: func(c *catalog.Catalog) *records.Service[models.Attribute] { return c.Attributes },
		header:  []string{"ID", "NAME", "TYPE", "VALUES"},
		row: func(a models.Attribute) []string {
			return []string{a.ID, a.Name, string(a.Type), strings.Join(a.Values, ", ")}
		},
	}
}

func newKindCommand[T models.Entity[T]](get func() *Cli, k kindCommands[T]) *cobra.Command {
	cmd := &cobra.Command{
		Use:     k.name,
		Aliases: k.aliases,
		Short:   fmt.Sprintf("Manage %s", k.plural),
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: fmt.Sprintf("List %s from the record store and the local mirror", k.plural),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return k.list(cmd, get())
			},
		},
		&cobra.Command{
			Use:   "get <id>",
			Short: fmt.Sprintf("Show one %s", k.name),
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return k.get(cmd, get(), args[0])
			},
		},
		k.createCommand(get),
		k.updateCommand(get),
		&cobra.Command{
			Use:   "delete <id>",
			Short: fmt.Sprintf("Delete a %s", k.name),
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return k.delete(cmd, get(), args[0])
			},
		},
	)

	return cmd
}

func (k kindCommands[T]) createCommand(get func() *Cli) *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:     "create --set field=value...",
		Short:   fmt.Sprintf("Create a %s", k.name),
		Example: createExample(k.name),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return k.create(cmd, get(), sets)
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field=value; JSON values are accepted, lists may be comma separated")
	return cmd
}

func (k kindCommands[T]) updateCommand(get func() *Cli) *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:   "update <id> --set field=value...",
		Short: fmt.Sprintf("Change fields of a %s", k.name),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return k.update(cmd, get(), args[0], sets)
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field=value; JSON values are accepted, lists may be comma separated")
	return cmd
}

func createExample(kind string) string {
	switch kind {
	case models.KindProduct:
		return "  vitrina product create --set name=Lamp --set price=19.90 --set stock=3 --set sizes=S,M"
	case models.KindCategory:
		return "  vitrina category create --set name=Lighting"
	default:
		return "  vitrina attribute create --set name=Fit --set type=select --set values=slim,regular"
	}
}

func (k kindCommands[T]) list(cmd *cobra.Command, c *Cli) error {
	s, err := c.connect(cmd.Context(), true)
	if err != nil {
		return err
	}

	recs := k.service(s.Catalog).List(cmd.Context())
	if len(recs) == 0 {
		c.io.Printf("No %s found.\n", k.plural)
		return nil
	}

	tw := tabwriter.NewWriter(c.io, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(k.header, "\t"))
	for _, rec := range recs {
		fmt.Fprintln(tw, strings.Join(k.row(rec), "\t"))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	c.io.Printf("\n%d %s\n", len(recs), k.plural)
	return nil
}

func (k kindCommands[T]) get(cmd *cobra.Command, c *Cli, id string) error {
	s, err := c.connect(cmd.Context(), true)
	if err != nil {
		return err
	}

	rec, ok := k.service(s.Catalog).GetByID(cmd.Context(), id)
	if !ok {
		return fmt.Errorf("%s %s not found", k.name, id)
	}

	out, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", k.name, err)
	}
	_, err = c.io.Write(append(out, '\n'))
	return err
}

func (k kindCommands[T]) create(cmd *cobra.Command, c *Cli, sets []string) error {
	patch, err := parseSets[T](sets)
	if err != nil {
		return err
	}

	var zero T
	rec, err := models.ApplyPatch(zero, patch)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", k.name, err)
	}

	s, err := c.connect(cmd.Context(), true)
	if err != nil {
		return err
	}

	created, err := k.service(s.Catalog).Create(cmd.Context(), rec)
	if err != nil {
		return err
	}

	c.io.Printf("Created %s %s\n", k.name, created.RecordID())
	if models.IsLocalID(created.RecordID()) {
		c.io.Println("Record store unreachable: saved locally. Run 'vitrina sync' once it is back.")
	}
	return nil
}

func (k kindCommands[T]) update(cmd *cobra.Command, c *Cli, id string, sets []string) error {
	patch, err := parseSets[T](sets)
	if err != nil {
		return err
	}

	s, err := c.connect(cmd.Context(), true)
	if err != nil {
		return err
	}

	updated, err := k.service(s.Catalog).Update(cmd.Context(), id, patch)
	if err != nil {
		return err
	}
	if updated == nil {
		return fmt.Errorf("%s %s not found", k.name, id)
	}

	c.io.Printf("Updated %s %s\n", k.name, id)
	return nil
}

func (k kindCommands[T]) delete(cmd *cobra.Command, c *Cli, id string) error {
	s, err := c.connect(cmd.Context(), true)
	if err != nil {
		return err
	}

	// удаление идемпотентно: неизвестный id тоже получает tombstone
	if _, err := k.service(s.Catalog).Delete(cmd.Context(), id); err != nil {
		return err
	}

	c.io.Printf("Deleted %s %s\n", k.name, id)
	return nil
}

// parseSets turns field=value pairs into a patch for T.
func parseSets[T any](sets []string) (models.Patch, error) {
	if len(sets) == 0 {
		return nil, fmt.Errorf("nothing to set, use --set field=value")
	}

	fields := editableFields[T]()
	patch := make(models.Patch, len(sets))
	for _, kv := range sets {
		key, value, ok := strings.Cut(kv, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q, expected field=value", kv)
		}
		if _, known := fields[key]; !known {
			return nil, fmt.Errorf("unknown field %q, expected one of: %s", key, strings.Join(sortedKeys(fields), ", "))
		}
		patch[key] = fieldValue[T](key, value)
	}
	return patch, nil
}

// fieldValue picks the first representation of value the field accepts:
// JSON, a plain string, or a comma separated list.
func fieldValue[T any](key, value string) any {
	var zero T
	fits := func(v any) bool {
		_, err := models.ApplyPatch(zero, models.Patch{key: v})
		return err == nil
	}

	var decoded any
	if err := json.Unmarshal([]byte(value), &decoded); err == nil && fits(decoded) {
		return decoded
	}
	if fits(value) {
		return value
	}

	parts := strings.Split(value, ",")
	if fits(parts) {
		return parts
	}
	// пусть ошибку типа сообщит валидация сервиса
	return value
}

// editableFields returns the JSON names of T's fields that users may set.
func editableFields[T any]() map[string]struct{} {
	fields := make(map[string]struct{})
	typ := reflect.TypeFor[T]()
	for i := range typ.NumField() {
		name, _, _ := strings.Cut(typ.Field(i).Tag.Get("json"), ",")
		switch name {
		case "", "-", "id", "created_at", "updated_at":
			continue
		}
		fields[name] = struct{}{}
	}
	return fields
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
