package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/mvi/internal/logging"
	"github.com/verte-zerg/mvi/internal/model"
	"github.com/verte-zerg/mvi/internal/mvi"
	"github.com/verte-zerg/mvi/internal/report"
	"github.com/verte-zerg/mvi/internal/todo"
)

var todosFilter string

func newTodosCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "todos",
		Short: "Manage todos without the TUI",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List todos",
		Args:  cobra.NoArgs,
		RunE:  runTodosList,
	}
	listCmd.Flags().StringVar(&todosFilter, "filter", "all", "all, active or completed")

	cmd.AddCommand(
		listCmd,
		&cobra.Command{
			Use:   "add <title>...",
			Short: "Add a todo",
			Args:  cobra.MinimumNArgs(1),
			RunE:  runTodosAdd,
		},
		&cobra.Command{
			Use:   "toggle <id>",
			Short: "Toggle completion of a todo",
			Args:  cobra.ExactArgs(1),
			RunE:  runTodosToggle,
		},
		&cobra.Command{
			Use:     "rm <id>",
			Aliases: []string{"delete"},
			Short:   "Delete a todo",
			Args:    cobra.ExactArgs(1),
			RunE:    runTodosDelete,
		},
		&cobra.Command{
			Use:   "edit <id> <title>...",
			Short: "Rename a todo",
			Args:  cobra.MinimumNArgs(2),
			RunE:  runTodosEdit,
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Delete completed todos",
			Args:  cobra.NoArgs,
			RunE:  runTodosClear,
		},
	)
	return cmd
}

// todoSession drives a todo store from the command goroutine, waiting for
// every launched step after each intent.
type todoSession struct {
	ctx   context.Context
	app   *app
	loop  *mvi.Loop
	store *todo.Store
}

func openTodoSession(cmd *cobra.Command) (*todoSession, error) {
	level, err := logging.ParseLevel(opts.logLevel)
	if err != nil {
		return nil, err
	}
	ctx := cmd.Context()
	a, err := openApp(ctx, opts, logging.NewCommandLogger(level))
	if err != nil {
		return nil, err
	}
	loop := mvi.NewLoop(ctx)
	s := &todoSession{ctx: ctx, app: a, loop: loop, store: a.newTodoStore(loop)}
	if err := s.send(todo.LoadTodos{}); err != nil {
		a.close()
		return nil, err
	}
	return s, nil
}

func (s *todoSession) send(intents ...todo.Intent) error {
	for _, intent := range intents {
		s.store.Send(intent)
		if err := s.loop.RunUntilIdle(s.ctx); err != nil {
			return fmt.Errorf("failed to finish %T: %w", intent, err)
		}
	}
	return nil
}

func (s *todoSession) close() {
	s.app.close()
}

func (s *todoSession) resolve(prefix string) (model.Todo, error) {
	return resolveTodo(s.store.State().Todos, prefix)
}

// resolveTodo finds the single todo whose ID starts with prefix.
func resolveTodo(todos []model.Todo, prefix string) (model.Todo, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return model.Todo{}, fmt.Errorf("todo id must not be empty")
	}
	var matches []model.Todo
	for _, t := range todos {
		if strings.HasPrefix(t.ID.String(), prefix) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return model.Todo{}, fmt.Errorf("no todo matches %q", prefix)
	case 1:
		return matches[0], nil
	default:
		return model.Todo{}, fmt.Errorf("todo id %q is ambiguous (%d matches)", prefix, len(matches))
	}
}

func runTodosList(cmd *cobra.Command, _ []string) error {
	filter, err := model.ParseFilter(todosFilter)
	if err != nil {
		return err
	}
	s, err := openTodoSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	s.store.FilterBinding().Set(filter)
	return printTodos(cmd, s.store.State().FilteredTodos())
}

func runTodosAdd(cmd *cobra.Command, args []string) error {
	s, err := openTodoSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	s.store.NewTodoTextBinding().Set(strings.Join(args, " "))
	if !s.store.State().CanAddTodo() {
		return fmt.Errorf("todo title must not be blank")
	}
	before := len(s.store.State().Todos)
	if err := s.send(todo.AddTodo{}); err != nil {
		return err
	}
	todos := s.store.State().Todos
	if len(todos) == before {
		return fmt.Errorf("todo was not added")
	}
	added := todos[len(todos)-1]
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", report.ShortID(added), added.Title)
	return err
}

func runTodosToggle(cmd *cobra.Command, args []string) error {
	return withTodo(cmd, args[0], func(s *todoSession, t model.Todo) error {
		return s.send(todo.ToggleTodo{ID: t.ID})
	})
}

func runTodosDelete(cmd *cobra.Command, args []string) error {
	return withTodo(cmd, args[0], func(s *todoSession, t model.Todo) error {
		return s.send(todo.DeleteTodo{ID: t.ID})
	})
}

func runTodosEdit(cmd *cobra.Command, args []string) error {
	title := strings.Join(args[1:], " ")
	return withTodo(cmd, args[0], func(s *todoSession, t model.Todo) error {
		return s.send(
			todo.StartEditing{ID: t.ID},
			todo.UpdateEditingText{Text: title},
			todo.SaveEdit{},
		)
	})
}

func runTodosClear(cmd *cobra.Command, _ []string) error {
	s, err := openTodoSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	before := s.store.State().CompletedTodoCount()
	if err := s.send(todo.ClearCompleted{}); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "cleared %d completed\n", before)
	return err
}

func withTodo(cmd *cobra.Command, prefix string, fn func(*todoSession, model.Todo) error) error {
	s, err := openTodoSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	t, err := s.resolve(prefix)
	if err != nil {
		return err
	}
	if err := fn(s, t); err != nil {
		return err
	}
	return printTodos(cmd, s.store.State().Todos)
}

func printTodos(cmd *cobra.Command, todos []model.Todo) error {
	return report.Todos(cmd.OutOrStdout(), todos, report.Options{MaxTitleWidth: titleWidth(cmd)})
}

// titleWidth keeps rows on one line when stdout is a terminal.
func titleWidth(cmd *cobra.Command) int {
	f, ok := cmd.OutOrStdout().(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	// ID, status and date columns take 31 cells.
	if w := width - 31; w > 10 {
		return w
	}
	return 10
}

