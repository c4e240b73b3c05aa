package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"taskdeck/internal/auth"
	"taskdeck/internal/model"
	"taskdeck/internal/notify"
	"taskdeck/internal/rules"
	"taskdeck/internal/store"
	"taskdeck/internal/tui"
)

var flagDataDir string

var rootCmd = &cobra.Command{
	Use:   "taskdeck",
	Short: "Task and project tracking with chat-driven assignment",
	Long:  `A client for daily task lists, projects with subtasks and progress, and a group chat where projects are assigned.`,
}

// env bundles the opened backend handles for one command invocation.
// Commands receive it explicitly; nothing hangs off a package global.
type env struct {
	store *store.Store
	auth  *auth.Service
}

func openEnv() (*env, error) {
	dir := flagDataDir
	if dir == "" {
		dir = os.Getenv("TASKDECK_DATA")
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, ".taskdeck")
	}

	st, err := store.Open(filepath.Join(dir, "taskdeck.db"))
	if err != nil {
		return nil, err
	}
	if err := st.Init(); err != nil {
		return nil, err
	}

	authSvc, err := auth.New(st.DB, filepath.Join(dir, "session"))
	if err != nil {
		return nil, err
	}
	return &env{store: st, auth: authSvc}, nil
}

// requireUser returns the signed-in user or an actionable error.
func (e *env) requireUser() (*auth.User, error) {
	user, err := e.auth.CurrentUser()
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("not signed in (use 'taskdeck login' or 'taskdeck signup')")
	}
	return user, nil
}

var signupCmd = &cobra.Command{
	Use:   "signup <email> <password>",
	Short: "Create an account and sign in",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.store.Close()

		name, _ := cmd.Flags().GetString("name")
		user, err := e.auth.SignUp(args[0], args[1], name)
		if err != nil {
			return err
		}
		fmt.Printf("Account created. Signed in as %s\n", user.Email)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login <email> <password>",
	Short: "Sign in",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.store.Close()

		user, err := e.auth.Login(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Signed in as %s\n", user.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.store.Close()

		if err := e.auth.Logout(); err != nil {
			return err
		}
		fmt.Println("Signed out")
		return nil
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show your profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.store.Close()

		user, err := e.requireUser()
		if err != nil {
			return err
		}

		fmt.Printf("Email:   %s\n", user.Email)
		p, err := e.store.GetProfile(user.ID)
		if errors.Is(err, store.ErrNotFound) {
			fmt.Println("No profile details set (use 'taskdeck profile set')")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Printf("Name:    %s\n", orNotSet(p.Name))
		fmt.Printf("Age:     %s\n", orNotSet(p.Age))
		fmt.Printf("Contact: %s\n", orNotSet(p.Contact))
		fmt.Printf("Region:  %s\n", orNotSet(p.Region))
		return nil
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update profile details (only provided fields change)",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.store.Close()

		user, err := e.requireUser()
		if err != nil {
			return err
		}

		p := &model.Profile{ID: user.ID}
		p.Name, _ = cmd.Flags().GetString("name")
		p.Age, _ = cmd.Flags().GetString("age")
		p.Contact, _ = cmd.Flags().GetString("contact")
		p.Region, _ = cmd.Flags().GetString("region")
		if p.Name == "" && p.Age == "" && p.Contact == "" && p.Region == "" {
			return fmt.Errorf("nothing to update (set --name, --age, --contact, or --region)")
		}

		if err := e.store.SaveProfile(p); err != nil {
			return err
		}
		fmt.Println("Profile updated")
		return nil
	},
}

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage daily tasks",
}

var taskAddCmd = &cobra.Command{
	Use:   "add <group> <name>",
	Short: "Add a task to a daily group (the group is created if missing)",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.store.Close()

		if _, err := e.requireUser(); err != nil {
			return err
		}

		g, err := e.store.AddTask(args[0], strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		fmt.Printf("Added to %s (%d/%d done)\n", g.Name, g.CompletedCount(), len(g.Tasks))
		return nil
	},
}

var taskListCmd = &cobra.Command{
	Use:   "list [group]",
	Short: "List daily task groups, or the tasks of one group",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.store.Close()

		if _, err := e.requireUser(); err != nil {
			return err
		}

		if len(args) == 0 {
			groups, err := e.store.ListGroups()
			if err != nil {
				return err
			}
			if len(groups) == 0 {
				fmt.Println("No daily task groups yet (use 'taskdeck task add')")
				return nil
			}
			for _, g := range groups {
				fmt.Printf("%-20s %d task%s, %d done\n", g.Name, len(g.Tasks), plural(len(g.Tasks)), g.CompletedCount())
			}
			return nil
		}

		g, err := e.store.GetGroupByName(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s — %d/%d done\n", g.Name, g.CompletedCount(), len(g.Tasks))
		for _, t := range g.Tasks {
			mark := "○"
			if t.Completed {
				mark = "●"
			}
			fmt.Printf("  %s %s  (%s)\n", mark, t.Name, t.ID)
		}
		return nil
	},
}

var taskToggleCmd = &cobra.Command{
	Use:   "toggle <group> <task-id>",
	Short: "Flip a task's completion flag",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.store.Close()

		if _, err := e.requireUser(); err != nil {
			return err
		}

		g, err := e.store.ToggleTask(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("%s — %d/%d done\n", g.Name, g.CompletedCount(), len(g.Tasks))
		return nil
	},
}

var taskRmCmd = &cobra.Command{
	Use:   "rm <group> <task-id>",
	Short: "Remove a task from a group",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.store.Close()

		if _, err := e.requireUser(); err != nil {
			return err
		}

		g, err := e.store.RemoveTask(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Removed. %s now has %d task%s\n", g.Name, len(g.Tasks), plural(len(g.Tasks)))
		return nil
	},
}

var taskDropCmd = &cobra.Command{
	Use:   "drop <group>",
	Short: "Delete a whole daily task group and everything in it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.store.Close()

		if _, err := e.requireUser(); err != nil {
			return err
		}

		if err := e.store.DeleteGroup(args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted group %q\n", args[0])
		return nil
	},
}

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects, ranked for display",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.store.Close()

		user, err := e.requireUser()
		if err != nil {
			return err
		}

		projects, err := e.store.ListProjects()
		if err != nil {
			return err
		}
		if len(projects) == 0 {
			fmt.Println("No projects yet (assign one with 'taskdeck project assign')")
			return nil
		}

		now := time.Now()
		ongoing, completed := rules.Partition(projects)

		fmt.Println("Ongoing Projects")
		printProjects(e, rules.Rank(ongoing, now), now, user)
		if len(completed) > 0 {
			fmt.Println("\nCompleted Projects")
			printProjects(e, rules.Rank(completed, now), now, user)
		}
		return nil
	},
}

var projectShowCmd = &cobra.Command{
	Use:   "show <project-id>",
	Short: "Show a project with its subtasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.store.Close()

		user, err := e.requireUser()
		if err != nil {
			return err
		}

		p, err := e.store.GetProject(args[0])
		if err != nil {
			return err
		}

		now := time.Now()
		fmt.Printf("%s  [%s]\n", p.Title, priorityTag(p, now))
		if p.Details != "" {
			fmt.Printf("%s\n", p.Details)
		}
		completed := 0
		for _, st := range p.Subtasks {
			if st.Completed {
				completed++
			}
		}
		fmt.Printf("Completion: %d%%  (%d/%d)\n", rules.ProjectProgress(p.Subtasks), completed, len(p.Subtasks))
		fmt.Printf("Assigned by: %s\n", assignedByName(e.store, p.CreatedBy, user))
		fmt.Printf("Due Date: %s\n", p.DueDate.Format("Jan 2, 2006"))
		if len(p.Subtasks) > 0 {
			fmt.Println("Sub-Tasks:")
			for _, st := range rules.SortSubtasksForDisplay(p.Subtasks) {
				mark := "○"
				if st.Completed {
					mark = "●"
				}
				fmt.Printf("  %s %s  (%s)\n", mark, st.Name, st.ID)
			}
		}
		return nil
	},
}

var projectAssignCmd = &cobra.Command{
	Use:   "assign <title>",
	Short: "Create a project and announce it in the chat",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.store.Close()

		user, err := e.requireUser()
		if err != nil {
			return err
		}

		details, _ := cmd.Flags().GetString("details")
		to, _ := cmd.Flags().GetString("to")
		important, _ := cmd.Flags().GetBool("important")
		dueStr, _ := cmd.Flags().GetString("due")
		due, err := parseDueDate(dueStr)
		if err != nil {
			return err
		}

		p := &model.Project{
			Title:       strings.Join(args, " "),
			Details:     details,
			DueDate:     due,
			AssignedTo:  to,
			IsImportant: important,
		}
		senderName := e.store.DisplayName(user.ID, user.DisplayName, user.Email)
		p, msg, err := e.store.AssignProject(p, user.ID, senderName)
		if err != nil {
			return err
		}
		fmt.Printf("Project %s assigned (%s)\n", p.ID, msg.Text)
		return nil
	},
}

var subtaskCmd = &cobra.Command{
	Use:   "subtask",
	Short: "Manage a project's subtasks",
}

var subtaskAddCmd = &cobra.Command{
	Use:   "add <project-id> <name>",
	Short: "Add a subtask and recompute progress",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.store.Close()

		if _, err := e.requireUser(); err != nil {
			return err
		}

		p, err := e.store.AddSubtask(args[0], strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		fmt.Printf("Added. Progress now %d%%\n", p.Progress)
		return nil
	},
}

var subtaskToggleCmd = &cobra.Command{
	Use:   "toggle <project-id> <subtask-id>",
	Short: "Flip a subtask's completion flag and recompute progress",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.store.Close()

		if _, err := e.requireUser(); err != nil {
			return err
		}

		p, err := e.store.ToggleSubtask(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Progress now %d%%\n", p.Progress)
		return nil
	},
}

var agendaCmd = &cobra.Command{
	Use:   "agenda",
	Short: "Show projects grouped by due date",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.store.Close()

		user, err := e.requireUser()
		if err != nil {
			return err
		}

		projects, err := e.store.ListProjects()
		if err != nil {
			return err
		}
		if len(projects) == 0 {
			fmt.Println("Nothing scheduled")
			return nil
		}

		sort.SliceStable(projects, func(i, j int) bool {
			return projects[i].DueDate.Before(projects[j].DueDate)
		})

		now := time.Now()
		lastDay := ""
		for _, p := range projects {
			day := p.DueDate.Format("Monday, Jan 2 2006")
			if day != lastDay {
				fmt.Printf("%s\n", day)
				lastDay = day
			}
			fmt.Printf("  [%-7s] %-24s %3d%%  by %s\n",
				priorityTag(&p, now), p.Title,
				rules.ProjectProgress(p.Subtasks),
				assignedByName(e.store, p.CreatedBy, user))
		}
		return nil
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Group chat",
}

var chatSendCmd = &cobra.Command{
	Use:   "send <text>",
	Short: "Send a chat message",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.store.Close()

		user, err := e.requireUser()
		if err != nil {
			return err
		}

		senderName := e.store.DisplayName(user.ID, user.DisplayName, user.Email)
		if _, err := e.store.SendMessage(user.ID, senderName, strings.Join(args, " ")); err != nil {
			return err
		}
		return nil
	},
}

var chatLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Print the chat history",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.store.Close()

		if _, err := e.requireUser(); err != nil {
			return err
		}

		messages, err := e.store.ListMessages()
		if err != nil {
			return err
		}
		for _, m := range messages {
			line := fmt.Sprintf("[%s] %s: %s", m.Timestamp.Local().Format("Jan 2 15:04"), m.SenderName, m.Text)
			if m.ProjectID != "" {
				line += fmt.Sprintf("  (project %s)", m.ProjectID)
			}
			fmt.Println(line)
		}
		return nil
	},
}

var remindCmd = &cobra.Command{
	Use:   "remind <title>",
	Short: "Schedule a local reminder after a delay",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body, _ := cmd.Flags().GetString("body")
		in, _ := cmd.Flags().GetDuration("in")

		fired := make(chan struct{})
		scheduler := notify.NewScheduler(func(r notify.Reminder) {
			fmt.Printf("\n%s\n%s\n", r.Title, r.Body)
			close(fired)
		})
		defer scheduler.Stop()

		if _, err := scheduler.Schedule(strings.Join(args, " "), body, in); err != nil {
			return err
		}
		fmt.Printf("Reminder set for %s\n", time.Now().Add(in).Format("15:04:05"))
		<-fired
		return nil
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.store.Close()

		user, err := e.requireUser()
		if err != nil {
			return err
		}
		return tui.Run(e.store, e.auth, user)
	},
}

// assignedByName resolves the creator's display name. The session's
// account name and email are only valid fallbacks for the signed-in
// user's own projects.
func assignedByName(st *store.Store, createdBy string, user *auth.User) string {
	if createdBy == user.ID {
		return st.DisplayName(user.ID, user.DisplayName, user.Email)
	}
	return st.DisplayName(createdBy, "", "")
}

// printProjects renders ranked project cards, one per line.
func printProjects(e *env, projects []model.Project, now time.Time, user *auth.User) {
	for _, p := range projects {
		assignedBy := assignedByName(e.store, p.CreatedBy, user)
		fmt.Printf("  [%-7s] %-24s %3d%%  due %s  by %s  (%s)\n",
			priorityTag(&p, now), p.Title, rules.ProjectProgress(p.Subtasks),
			p.DueDate.Format("Jan 2"), assignedBy, p.ID)
	}
}

// priorityTag renders the display label: Overdue overrides the computed
// priority, which still drives sorting.
func priorityTag(p *model.Project, now time.Time) string {
	if rules.IsOverdue(p.DueDate, now) {
		return "Overdue"
	}
	return string(rules.Classify(p.DueDate, p.IsImportant, now))
}

// parseDueDate accepts YYYY-MM-DD, "today", or "tomorrow". Relative
// names resolve to the end of the local calendar day.
func parseDueDate(s string) (time.Time, error) {
	now := time.Now()
	endOfDay := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, time.Local)
	}
	switch strings.ToLower(s) {
	case "", "today":
		return endOfDay(now), nil
	case "tomorrow":
		return endOfDay(now.AddDate(0, 0, 1)), nil
	}
	due, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due date %q (use YYYY-MM-DD, today, or tomorrow)", s)
	}
	return due, nil
}

func orNotSet(s string) string {
	if s == "" {
		return "Not set"
	}
	return s
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default ~/.taskdeck)")

	signupCmd.Flags().String("name", "", "display name")

	profileSetCmd.Flags().String("name", "", "display name")
	profileSetCmd.Flags().String("age", "", "age")
	profileSetCmd.Flags().String("contact", "", "contact number")
	profileSetCmd.Flags().String("region", "", "region")
	profileCmd.AddCommand(profileSetCmd)

	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskToggleCmd)
	taskCmd.AddCommand(taskRmCmd)
	taskCmd.AddCommand(taskDropCmd)

	projectAssignCmd.Flags().String("details", "", "free-text project details")
	projectAssignCmd.Flags().String("due", "", "due date (YYYY-MM-DD, today, tomorrow)")
	projectAssignCmd.Flags().String("to", "", "assignee")
	projectAssignCmd.Flags().Bool("important", false, "mark as important")
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectShowCmd)
	projectCmd.AddCommand(projectAssignCmd)
	subtaskCmd.AddCommand(subtaskAddCmd)
	subtaskCmd.AddCommand(subtaskToggleCmd)
	projectCmd.AddCommand(subtaskCmd)

	chatCmd.AddCommand(chatSendCmd)
	chatCmd.AddCommand(chatLogCmd)

	remindCmd.Flags().String("body", "", "reminder body")
	remindCmd.Flags().Duration("in", time.Minute, "delay before the reminder fires")

	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(agendaCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(remindCmd)
	rootCmd.AddCommand(tuiCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
