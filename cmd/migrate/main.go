package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
)

type CLI struct {
	DBURL      string `name:"db-url" env:"DB_URL" required:"" help:"PostgreSQL connection URL"`
	Migrations string `name:"migrations" help:"Migrations directory (searched upwards from the working directory when empty)"`

	Up      UpCmd      `cmd:"" default:"1" help:"Apply all pending migrations"`
	Down    DownCmd    `cmd:"" help:"Roll back migrations"`
	Version VersionCmd `cmd:"" help:"Print the current schema version"`
	Force   ForceCmd   `cmd:"" help:"Mark a version as applied without running it"`
}

type UpCmd struct{}

func (c *UpCmd) Run(cli *CLI) error {
	m, err := cli.migrator()
	if err != nil {
		return err
	}
	defer closeMigrator(m)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	log.Println("Migration up successful")
	return nil
}

type DownCmd struct {
	Steps int `help:"Number of migrations to roll back (0 rolls back everything)" default:"0"`
}

func (c *DownCmd) Run(cli *CLI) error {
	m, err := cli.migrator()
	if err != nil {
		return err
	}
	defer closeMigrator(m)

	if c.Steps > 0 {
		err = m.Steps(-c.Steps)
	} else {
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	log.Println("Migration down successful")
	return nil
}

type VersionCmd struct{}

func (c *VersionCmd) Run(cli *CLI) error {
	m, err := cli.migrator()
	if err != nil {
		return err
	}
	defer closeMigrator(m)

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Println("no migrations applied")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("version %d (dirty: %t)\n", version, dirty)
	return nil
}

type ForceCmd struct {
	Target int `arg:"" help:"Version to record as applied"`
}

func (c *ForceCmd) Run(cli *CLI) error {
	m, err := cli.migrator()
	if err != nil {
		return err
	}
	defer closeMigrator(m)

	if err := m.Force(c.Target); err != nil {
		return err
	}
	log.Printf("Forced schema version %d", c.Target)
	return nil
}

func (cli *CLI) migrator() (*migrate.Migrate, error) {
	migrationsPath := cli.Migrations
	if migrationsPath == "" {
		found, err := findMigrationsDir()
		if err != nil {
			return nil, err
		}
		migrationsPath = found
	}
	absMigrationsPath, err := filepath.Abs(migrationsPath)
	if err != nil {
		return nil, err
	}

	return migrate.New("file://"+absMigrationsPath, cli.DBURL)
}

func closeMigrator(m *migrate.Migrate) {
	if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
		log.Printf("close migrator: source=%v database=%v", srcErr, dbErr)
	}
}

func findMigrationsDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	candidates := []string{}
	current := cwd
	for i := 0; i < 6; i++ {
		candidates = append(candidates, filepath.Join(current, "migrations"))
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	exePath, err := os.Executable()
	if err == nil {
		exeDir := filepath.Dir(exePath)
		candidates = append(candidates,
			filepath.Join(exeDir, "migrations"),
			filepath.Join(exeDir, "..", "migrations"),
			filepath.Join(exeDir, "..", "..", "migrations"),
		)
	}
	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil && info.IsDir() {
			return candidate, nil
		}
	}
	return "", errors.New("migrations directory not found")
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("migrate"),
		kong.Description("Apply database migrations for the sessions service"),
		kong.UsageOnError(),
		kong.Bind(&cli),
	)
	if err := ctx.Run(); err != nil {
		log.Fatal(err)
	}
}
