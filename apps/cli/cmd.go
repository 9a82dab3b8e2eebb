package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	pkgerrors "github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/trezcool/sahayak/core"
	"github.com/trezcool/sahayak/core/session"
	"github.com/trezcool/sahayak/core/user"
)

var (
	isTerminalFunc = term.IsTerminal // mockable

	errHelp         = errors.New("help provided")
	errUnknownClass = errors.New("class is not one of the user's classes")
)

type commandLine struct {
	store    *session.Store
	keys     []string
	validate *validator.Validate
	out      io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  whoami                                      - show the current session")
	fmt.Fprintln(cli.out, "  login -email EMAIL                          - log in")
	fmt.Fprintln(cli.out, "  onboard -grades G1,G2 -subjects S1,S2 -classes \"G1=1A,1B\" [-classes ...] [-experience E]")
	fmt.Fprintln(cli.out, "                                              - complete the teacher onboarding")
	fmt.Fprintln(cli.out, "  classes                                     - list the classes of the current user")
	fmt.Fprintln(cli.out, "  switch -grade GRADE -class CLASS            - select a class")
	fmt.Fprintln(cli.out, "  logout                                      - log out")
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	loginCmd := cli.newFlagSet("login")
	loginEmail := loginCmd.String("email", "", "The account email.")

	onboardCmd := cli.newFlagSet("onboard")
	onboardGrades := onboardCmd.String("grades", "", "Comma separated grades taught, e.g. \"Grade 3,Grade 4\".")
	onboardSubjects := onboardCmd.String("subjects", "", "Comma separated subjects taught.")
	onboardExperience := onboardCmd.String("experience", "", "Teaching experience, one of: "+strings.Join(user.ExperienceLevels, ", ")+".")
	onboardSpecialization := onboardCmd.String("specialization", "", "Specialization (optional).")
	onboardBio := onboardCmd.String("bio", "", "Short bio (optional).")
	var onboardClasses classesFlag
	onboardCmd.Var(&onboardClasses, "classes", "Sections of a grade, e.g. \"Grade 3=3A,3B\" (\"+\" picks the next letter). A bare grade adds one section. Repeat for every grade.")

	switchCmd := cli.newFlagSet("switch")
	switchGrade := switchCmd.String("grade", "", "The grade, e.g. \"Grade 5\".")
	switchClass := switchCmd.String("class", "", "The class-section, e.g. \"5A\".")

	switch args[1] {
	case "whoami":
		return cli.whoami()
	case "login":
		if err := loginCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *loginEmail == "" {
			loginCmd.Usage()
			return errHelp
		}
		return cli.login(ctx, *loginEmail)
	case "onboard":
		if err := onboardCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *onboardGrades == "" && *onboardSubjects == "" {
			onboardCmd.Usage()
			return errHelp
		}
		return cli.onboard(ctx, user.TeacherProfile{
			Grades:         splitList(*onboardGrades),
			Subjects:       splitList(*onboardSubjects),
			Classes:        user.ClassMap(onboardClasses),
			Experience:     *onboardExperience,
			Specialization: *onboardSpecialization,
			Bio:            *onboardBio,
		})
	case "classes":
		return cli.classes()
	case "switch":
		if err := switchCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *switchGrade == "" || *switchClass == "" {
			switchCmd.Usage()
			return errHelp
		}
		return cli.switchClass(ctx, user.ClassContext{Grade: core.CleanString(*switchGrade), ClassName: core.CleanString(*switchClass)})
	case "logout":
		return cli.logout(ctx)
	default:
		cli.printUsage()
		return errHelp
	}
}

// Commands

func (cli *commandLine) whoami() error {
	return cli.printSnapshot(cli.store.Snapshot())
}

func (cli *commandLine) login(ctx context.Context, email string) error {
	if _, err := cli.store.Login(ctx, email); err != nil {
		if pkgerrors.Cause(err) == user.ErrNotFound {
			if s, ok := user.Suggest(email, cli.keys); ok {
				return pkgerrors.Wrapf(user.ErrNotFound, "%s (did you mean %s?)", core.CleanString(email, true), s)
			}
		}
		return err
	}
	return cli.printSnapshot(cli.store.Snapshot())
}

func (cli *commandLine) onboard(ctx context.Context, prof user.TeacherProfile) error {
	if err := prof.Validate(cli.validate); err != nil {
		return err
	}
	if _, err := cli.store.CompleteOnboarding(ctx, prof); err != nil {
		return err
	}
	return cli.printSnapshot(cli.store.Snapshot())
}

func (cli *commandLine) classes() error {
	classes := cli.store.AllClasses()
	if !isTerminalFunc(int(os.Stdout.Fd())) {
		return cli.printJSON(classes)
	}

	selected, hasSelected := cli.store.SelectedClass()
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "\tGRADE\tCLASS")
	for _, c := range classes {
		mark := ""
		if hasSelected && c == selected {
			mark = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", mark, c.Grade, c.ClassName)
	}
	return w.Flush()
}

func (cli *commandLine) switchClass(ctx context.Context, class user.ClassContext) error {
	if _, ok := cli.store.User(); !ok {
		return session.ErrNotLoggedIn
	}
	if !cli.store.IsKnownClass(class) {
		return pkgerrors.Wrap(errUnknownClass, class.String())
	}
	if err := cli.store.SwitchClass(ctx, class); err != nil {
		return err
	}
	return cli.printSnapshot(cli.store.Snapshot())
}

func (cli *commandLine) logout(ctx context.Context) error {
	if err := cli.store.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "logged out")
	return nil
}

// Output

func (cli *commandLine) printJSON(v interface{}) error {
	enc := json.NewEncoder(cli.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (cli *commandLine) printSnapshot(snap session.Snapshot) error {
	if !isTerminalFunc(int(os.Stdout.Fd())) {
		return cli.printJSON(snap)
	}

	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "state:\t%s\n", snap.State)
	if snap.User != nil {
		fmt.Fprintf(w, "user:\t%s <%s>\n", snap.User.Name, snap.User.Email)
		fmt.Fprintf(w, "role:\t%s\n", snap.User.Role)
		if prof, ok := snap.User.PrincipalProfile(); ok {
			fmt.Fprintf(w, "school:\t%s\n", prof.SchoolName)
		}
		if prof, ok := snap.User.TeacherProfile(); ok {
			fmt.Fprintf(w, "subjects:\t%s\n", strings.Join(prof.Subjects, ", "))
		}
	}
	if snap.SelectedClass != nil {
		fmt.Fprintf(w, "class:\t%s\n", snap.SelectedClass)
	}
	return w.Flush()
}

// classesFlag collects repeated -classes "Grade 3=3A,3B" values.
type classesFlag user.ClassMap

func (f *classesFlag) String() string {
	parts := make([]string, 0, len(*f))
	for _, gs := range *f {
		parts = append(parts, gs.Grade+"="+strings.Join(gs.Sections, ","))
	}
	return strings.Join(parts, " ")
}

// A bare GRADE adds one section named like the onboarding form does (A, B, C...),
// and so does a "+" in a section list.
func (f *classesFlag) Set(value string) error {
	grade, list, hasList := strings.Cut(value, "=")
	grade = core.CleanString(grade)
	if grade == "" {
		return fmt.Errorf("expected GRADE[=SECTION,...], got %q", value)
	}

	m := user.ClassMap(*f)
	var sections []string
	if hasList {
		sections = make([]string, 0)
		for _, item := range splitList(list) {
			if item == "+" {
				item = user.NextSectionName(sections)
			}
			sections = append(sections, item)
		}
	} else {
		curr, _ := m.Sections(grade)
		sections = append(append(make([]string, 0, len(curr)+1), curr...), user.NextSectionName(curr))
	}
	m.Set(grade, sections...)
	*f = classesFlag(m)
	return nil
}

func splitList(s string) []string {
	items := make([]string, 0)
	for _, item := range strings.Split(s, ",") {
		if item = core.CleanString(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// describe renders validation errors field by field.
func describe(err error, translator ut.Translator) string {
	verrs, ok := pkgerrors.Cause(err).(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fErr := range core.TranslateErrors(verrs, translator) {
		msgs = append(msgs, fErr.Field+": "+fErr.Error)
	}
	return strings.Join(msgs, "; ")
}
