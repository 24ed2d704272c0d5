package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jrsteele09/uniassist/api"
	"github.com/jrsteele09/uniassist/schedule"
	"github.com/spf13/cobra"
)

func (a *app) newScheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule [today|tomorrow|YYYY-MM-DD]",
		Short: "Show the timetable of a day",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var arg string
			if len(args) == 1 {
				arg = args[0]
			}
			date, err := schedule.ParseDate(arg, a.now())
			if err != nil {
				return err
			}
			day, err := a.schedule.Day(cmd.Context(), date)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			heading := fmt.Sprintf("Schedule for %s", date.Format("Mon 2 Jan 2006"))
			if day.Group != nil {
				heading += fmt.Sprintf(" (group %d)", *day.Group)
			}
			fmt.Fprintln(out, heading)
			if len(day.Lessons) == 0 {
				fmt.Fprintln(out, "No lessons")
				return nil
			}

			loc := a.now().Location()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, l := range day.Lessons {
				fmt.Fprintf(w, "%s-%s\t%s\t%s\t%s\t%s\n",
					l.Start.In(loc).Format("15:04"), l.End.In(loc).Format("15:04"), l.Subject, l.Kind, l.Room, l.Teacher)
			}
			return w.Flush()
		},
	}
}

func (a *app) newTasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Manage personal tasks",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := a.schedule.Tasks(cmd.Context())
			if err != nil {
				return err
			}
			if len(tasks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tasks")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDONE\tDUE\tTITLE")
			for _, t := range tasks {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.ID, checkbox(t.Done), dueDate(t), t.Title)
			}
			return w.Flush()
		},
	})

	var due, description string
	add := &cobra.Command{
		Use:   "add <title...>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task := api.Task{Title: strings.Join(args, " "), Description: description}
			if due != "" {
				d, err := schedule.ParseDate(due, a.now())
				if err != nil {
					return err
				}
				task.Due = &d
			}
			created, err := a.schedule.CreateTask(cmd.Context(), task)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created task %s\n", created.ID)
			return nil
		},
	}
	add.Flags().StringVar(&due, "due", "", "Due date: today, tomorrow or YYYY-MM-DD")
	add.Flags().StringVar(&description, "description", "", "Longer description")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task as done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := a.schedule.CompleteTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Completed %q\n", task.Title)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.schedule.DeleteTask(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", args[0])
			return nil
		},
	})

	return cmd
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

func dueDate(t api.Task) string {
	if t.Due == nil {
		return "-"
	}
	return t.Due.Format(time.DateOnly)
}
