package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var todoCmd = &cobra.Command{
	Use:   "todo",
	Short: "Manage the task list",
}

var (
	flagTodoPriority string
	flagTodoTags     []string
)

var todoAddCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Add a task",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		t, ok := a.todos.Add(strings.Join(args, " "), flagTodoPriority, flagTodoTags)
		if !ok {
			return fmt.Errorf("task text must not be empty")
		}
		fmt.Printf("added #%d: %s\n", t.ID, t.Text)
		return nil
	},
}

var todoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		todos := a.todos.Todos()
		if len(todos) == 0 {
			fmt.Println("No tasks.")
			return nil
		}
		for _, t := range todos {
			mark := " "
			if t.Completed {
				mark = "x"
			}
			line := fmt.Sprintf("[%s] #%d %s (%s)", mark, t.ID, t.Text, t.Priority)
			if len(t.Tags) > 0 {
				line += " " + strings.Join(t.Tags, ",")
			}
			fmt.Println(line)
		}
		stats := a.todos.Stats()
		fmt.Printf("\n%d task(s), %d done, %d open\n", stats.Total, stats.Completed, stats.Open)
		return nil
	},
}

var todoDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Toggle a task's completion state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid task id %q", args[0])
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		if !a.todos.Toggle(id) {
			return fmt.Errorf("no task with id %d", id)
		}
		return nil
	},
}

var todoRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid task id %q", args[0])
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		if !a.todos.Delete(id) {
			return fmt.Errorf("no task with id %d", id)
		}
		return nil
	},
}

func init() {
	todoAddCmd.Flags().StringVar(&flagTodoPriority, "priority", "normal", "task priority (low, normal, high)")
	todoAddCmd.Flags().StringSliceVar(&flagTodoTags, "tag", nil, "tag the task (repeatable)")

	todoCmd.AddCommand(todoAddCmd)
	todoCmd.AddCommand(todoListCmd)
	todoCmd.AddCommand(todoDoneCmd)
	todoCmd.AddCommand(todoRmCmd)
}
