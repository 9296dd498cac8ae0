// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/stackit/client"
	"github.com/danielhkuo/stackit/models"
)

func newTagsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Browse tags",
	}

	var p client.Page
	list := &cobra.Command{
		Use:   "list",
		Short: "List all tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tags, err := a.api.Tags(cmd.Context(), p)
			if err != nil {
				return err
			}
			return a.emitTags(tags)
		},
	}
	list.Flags().IntVar(&p.Skip, "skip", 0, "Results to skip")
	list.Flags().IntVar(&p.Limit, "limit", 100, "Maximum results")

	var popularLimit int
	popular := &cobra.Command{
		Use:   "popular",
		Short: "List the most used tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tags, err := a.api.PopularTags(cmd.Context(), client.Page{Limit: popularLimit})
			if err != nil {
				return err
			}
			return a.emitTags(tags)
		},
	}
	popular.Flags().IntVar(&popularLimit, "limit", 10, "Maximum results")

	search := &cobra.Command{
		Use:   "search QUERY",
		Short: "Find tags by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tags, err := a.api.SearchTags(cmd.Context(), args[0], client.Page{})
			if err != nil {
				return err
			}
			return a.emitTags(tags)
		},
	}

	show := &cobra.Command{
		Use:   "show NAME",
		Short: "Show a tag and its questions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tag, err := a.api.Tag(ctx, args[0])
			if err != nil {
				return err
			}
			qs, err := a.api.QuestionsByTag(ctx, tag.Name, client.Page{Limit: 20})
			if err != nil {
				return err
			}
			view := struct {
				Tag       models.Tag        `json:"tag" yaml:"tag"`
				Questions []models.Question `json:"questions" yaml:"questions"`
			}{tag, qs}
			return a.emit(view, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "%s\t%d questions\n", a.paint(colorBold, tag.Name), tag.QuestionCount)
				if tag.Description != "" {
					fmt.Fprintln(tw, tag.Description)
				}
				fmt.Fprintln(tw)
				fmt.Fprintln(tw, "ID\tTITLE\tANSWERS\tASKED")
				for _, q := range qs {
					fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", q.ID, truncate(q.Title, 60), q.AnswerCount, ago(q.CreatedAt))
				}
			})
		},
	}

	var description string
	create := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			tag, err := a.api.CreateTag(cmd.Context(), models.CreateTagRequest{Name: args[0], Description: description})
			if err != nil {
				return err
			}
			return a.emit(tag, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "Created tag %s\n", tag.Name)
			})
		},
	}
	create.Flags().StringVar(&description, "description", "", "What the tag is for")

	cmd.AddCommand(list, popular, search, show, create)
	return cmd
}

func (a *app) emitTags(tags []models.Tag) error {
	return a.emit(tags, func(tw *tabwriter.Writer) {
		if len(tags) == 0 {
			fmt.Fprintln(tw, "No tags found")
			return
		}
		fmt.Fprintln(tw, "NAME\tQUESTIONS\tDESCRIPTION")
		for _, t := range tags {
			fmt.Fprintf(tw, "%s\t%d\t%s\n", t.Name, t.QuestionCount, truncate(t.Description, 60))
		}
	})
}
