package prompt

import "sort"

// Target selects which half of the application a code-generation prompt describes.
type Target string

const (
	TargetBackend  Target = "backend"
	TargetFrontend Target = "frontend"
)

func (t Target) IsValid() bool {
	return t == TargetBackend || t == TargetFrontend
}

// Database identifies the relational database a backend should target.
type Database string

const (
	DatabasePostgreSQL Database = "postgresql"
	DatabaseMySQL      Database = "mysql"
	DatabaseMariaDB    Database = "mariadb"
	DatabaseSQLite     Database = "sqlite"
)

// DeploymentMode decides whether generated code ships container artifacts.
type DeploymentMode string

const (
	DeploymentDocker DeploymentMode = "docker"
	DeploymentLocal  DeploymentMode = "local"
)

func (m DeploymentMode) IsValid() bool {
	return m == DeploymentDocker || m == DeploymentLocal
}

// DatabaseOption is the display and feature data for one database.
type DatabaseOption struct {
	Value       Database `json:"value"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
}

// Framework is one entry of the static framework catalog.
type Framework struct {
	// ID is the identifier users select, e.g. "Ruby on Rails".
	ID string `json:"id"`
	// Name is substituted into the prompt, e.g. "Ruby on Rails 8".
	Name     string   `json:"name"`
	Features []string `json:"features"`
	// Databases maps a database to the framework's integration detail.
	// Empty means the framework manages its own storage and gets no database block.
	Databases map[Database]string `json:"databases,omitempty"`
}

// SupportsDatabase reports whether db has an integration string for this framework.
func (f Framework) SupportsDatabase(db Database) bool {
	_, ok := f.Databases[db]
	return ok
}

var databaseOptions = []DatabaseOption{
	{
		Value:       DatabasePostgreSQL,
		Label:       "PostgreSQL",
		Description: "Advanced open-source relational database",
		Features:    []string{"ACID compliance", "JSON/JSONB support", "Full-text search", "Advanced indexing"},
	},
	{
		Value:       DatabaseMySQL,
		Label:       "MySQL",
		Description: "Popular open-source relational database",
		Features:    []string{"High performance", "Replication", "InnoDB storage engine", "Wide hosting support"},
	},
	{
		Value:       DatabaseMariaDB,
		Label:       "MariaDB",
		Description: "Community-developed fork of MySQL",
		Features:    []string{"MySQL compatibility", "Galera clustering", "Columnar storage", "Open governance"},
	},
	{
		Value:       DatabaseSQLite,
		Label:       "SQLite",
		Description: "Lightweight file-based database",
		Features:    []string{"Zero configuration", "Serverless", "Single-file storage", "Embedded"},
	},
}

func orm(name string) map[Database]string {
	return map[Database]string{
		DatabasePostgreSQL: name + " with the PostgreSQL driver",
		DatabaseMySQL:      name + " with the MySQL driver",
		DatabaseMariaDB:    name + " with the MySQL-compatible driver for MariaDB",
		DatabaseSQLite:     name + " with the SQLite driver",
	}
}

var backendFrameworks = []Framework{
	{
		ID: "Ruby on Rails", Name: "Ruby on Rails 8",
		Features: []string{"ActiveRecord ORM", "RSpec testing", "Devise authentication", "Sidekiq background jobs"},
		Databases: map[Database]string{
			DatabasePostgreSQL: "pg gem with ActiveRecord",
			DatabaseMySQL:      "mysql2 gem with ActiveRecord",
			DatabaseMariaDB:    "mysql2 gem with ActiveRecord (MariaDB)",
			DatabaseSQLite:     "sqlite3 gem with ActiveRecord",
		},
	},
	{
		ID: "Node.js Express", Name: "Node.js Express",
		Features:  []string{"TypeScript", "Prisma ORM", "Jest testing", "JWT authentication", "Redis caching"},
		Databases: orm("Prisma"),
	},
	{
		ID: "Python Django", Name: "Python Django",
		Features: []string{"Django REST Framework", "PostgreSQL", "Celery", "pytest testing", "Django authentication"},
		Databases: map[Database]string{
			DatabasePostgreSQL: "django.db.backends.postgresql with psycopg",
			DatabaseMySQL:      "django.db.backends.mysql with mysqlclient",
			DatabaseMariaDB:    "django.db.backends.mysql with mysqlclient (MariaDB)",
			DatabaseSQLite:     "django.db.backends.sqlite3",
		},
	},
	{
		ID: "Python FastAPI", Name: "Python FastAPI",
		Features:  []string{"SQLAlchemy ORM", "Pydantic validation", "pytest testing", "OAuth2 authentication", "Async support"},
		Databases: orm("SQLAlchemy with Alembic migrations"),
	},
	{
		ID: "Python Flask", Name: "Python Flask",
		Features:  []string{"SQLAlchemy ORM", "Flask-RESTful", "pytest testing", "JWT authentication", "Marshmallow serialization"},
		Databases: orm("Flask-SQLAlchemy with Flask-Migrate"),
	},
	{
		ID: "Java Spring Boot", Name: "Java Spring Boot",
		Features:  []string{"Spring Data JPA", "Spring Security", "JUnit testing", "Maven/Gradle", "H2/PostgreSQL"},
		Databases: orm("Spring Data JPA with Flyway migrations"),
	},
	{
		ID: "C# .NET Core", Name: "C# .NET Core Web API",
		Features: []string{"Entity Framework Core", "xUnit testing", "JWT authentication", "Swagger integration"},
		Databases: map[Database]string{
			DatabasePostgreSQL: "Entity Framework Core with Npgsql",
			DatabaseMySQL:      "Entity Framework Core with Pomelo MySQL provider",
			DatabaseMariaDB:    "Entity Framework Core with Pomelo MySQL provider (MariaDB)",
			DatabaseSQLite:     "Entity Framework Core with Microsoft.Data.Sqlite",
		},
	},
	{
		ID: "C# ASP.NET Core", Name: "C# ASP.NET Core",
		Features: []string{"Entity Framework Core", "Identity Framework", "xUnit testing", "SignalR", "Blazor components"},
		Databases: map[Database]string{
			DatabasePostgreSQL: "Entity Framework Core with Npgsql",
			DatabaseMySQL:      "Entity Framework Core with Pomelo MySQL provider",
			DatabaseMariaDB:    "Entity Framework Core with Pomelo MySQL provider (MariaDB)",
			DatabaseSQLite:     "Entity Framework Core with Microsoft.Data.Sqlite",
		},
	},
	{
		ID: "Go Gin", Name: "Go Gin framework",
		Features:  []string{"GORM ORM", "Go testing", "JWT authentication", "Redis integration", "Docker optimization"},
		Databases: orm("GORM"),
	},
	{
		ID: "Go Fiber", Name: "Go Fiber framework",
		Features:  []string{"GORM ORM", "Go testing", "JWT middleware", "High performance", "Swagger integration"},
		Databases: orm("GORM"),
	},
	{
		ID: "Go Echo", Name: "Go Echo framework",
		Features:  []string{"GORM ORM", "Go testing", "JWT middleware", "WebSocket support", "Prometheus metrics"},
		Databases: orm("GORM"),
	},
	{
		ID: "PHP Laravel", Name: "PHP Laravel",
		Features:  []string{"Eloquent ORM", "PHPUnit testing", "Laravel Passport", "Queue jobs", "Artisan commands"},
		Databases: laravelDatabases,
	},
	{
		ID: "PHP Laravel 11", Name: "PHP Laravel 11",
		Features:  []string{"Eloquent ORM", "Pest testing", "Laravel Sanctum", "Queue jobs", "Artisan commands"},
		Databases: laravelDatabases,
	},
	{
		ID: "PHP Symfony", Name: "PHP Symfony",
		Features:  []string{"Doctrine ORM", "PHPUnit testing", "Symfony Security", "Messenger component", "API Platform"},
		Databases: orm("Doctrine ORM with Doctrine Migrations"),
	},
	{
		ID: "Rust Actix", Name: "Rust Actix Web",
		Features:  []string{"Diesel ORM", "Rust testing", "JWT authentication", "High performance", "Async support"},
		Databases: orm("Diesel"),
	},
	{
		ID: "Rust Axum", Name: "Rust Axum framework",
		Features:  []string{"SQLx", "Rust testing", "Tower middleware", "Tokio async", "Serde serialization"},
		Databases: orm("SQLx"),
	},
	{
		ID: "Kotlin Spring Boot", Name: "Kotlin Spring Boot",
		Features:  []string{"Spring Data JPA", "Spring Security", "JUnit testing", "Coroutines", "Kotlin DSL"},
		Databases: orm("Spring Data JPA with Flyway migrations"),
	},
	{
		ID: "Scala Play", Name: "Scala Play Framework",
		Features:  []string{"Slick ORM", "ScalaTest", "Play authentication", "Akka actors", "JSON handling"},
		Databases: orm("Slick with Play Evolutions"),
	},
	{
		ID: "Elixir Phoenix", Name: "Elixir Phoenix",
		Features: []string{"Ecto ORM", "ExUnit testing", "Guardian authentication", "LiveView", "PubSub"},
		Databases: map[Database]string{
			DatabasePostgreSQL: "Ecto with Postgrex",
			DatabaseMySQL:      "Ecto with MyXQL",
			DatabaseMariaDB:    "Ecto with MyXQL (MariaDB)",
			DatabaseSQLite:     "Ecto with ecto_sqlite3",
		},
	},
	{
		ID: "Node.js Serverless", Name: "Node.js Serverless (AWS Lambda)",
		Features: []string{"Serverless Framework", "DynamoDB", "API Gateway", "CloudFormation", "Jest testing"},
	},
	{
		ID: "Python Serverless", Name: "Python Serverless (AWS Lambda)",
		Features: []string{"Serverless Framework", "DynamoDB", "API Gateway", "boto3", "pytest testing"},
	},
	{
		ID: "Go Serverless", Name: "Go Serverless (AWS Lambda)",
		Features: []string{"AWS SDK", "DynamoDB", "API Gateway", "CloudFormation", "Go testing"},
	},
	{
		ID: "Node.js Microservices", Name: "Node.js Microservices",
		Features:  []string{"Express/Fastify", "Docker", "Kubernetes", "Message queues", "Service discovery"},
		Databases: orm("Prisma"),
	},
	{
		ID: "Java Microservices", Name: "Java Spring Boot Microservices",
		Features:  []string{"Spring Cloud", "Docker", "Kubernetes", "Eureka", "Config Server"},
		Databases: orm("Spring Data JPA"),
	},
	{
		ID: "Python Microservices", Name: "Python Microservices",
		Features:  []string{"FastAPI/Flask", "Docker", "Kubernetes", "Celery", "Service mesh"},
		Databases: orm("SQLAlchemy"),
	},
	{
		ID: "Go Microservices", Name: "Go Microservices",
		Features:  []string{"gRPC", "Docker", "Kubernetes", "Consul", "Prometheus"},
		Databases: orm("GORM"),
	},
}

var laravelDatabases = map[Database]string{
	DatabasePostgreSQL: "Eloquent with the pgsql connection",
	DatabaseMySQL:      "Eloquent with the mysql connection",
	DatabaseMariaDB:    "Eloquent with the mariadb connection",
	DatabaseSQLite:     "Eloquent with the sqlite connection",
}

var frontendFrameworks = []Framework{
	{ID: "Next.js", Name: "Next.js", Features: []string{"TypeScript", "Tailwind CSS", "App Router", "Server Components", "Vercel deployment"}},
	{ID: "React", Name: "React", Features: []string{"TypeScript", "React Router", "Zustand/Redux Toolkit", "Tailwind CSS", "Vite"}},
	{ID: "Gatsby", Name: "Gatsby", Features: []string{"TypeScript", "GraphQL", "Tailwind CSS", "PWA", "Static generation"}},
	{ID: "Remix", Name: "Remix", Features: []string{"TypeScript", "Tailwind CSS", "Progressive enhancement", "Nested routing", "Form handling"}},
	{ID: "NuxtJS", Name: "NuxtJS", Features: []string{"TypeScript", "Tailwind CSS", "Pinia", "Auto-imports", "SSR/SSG"}},
	{ID: "Vue.js", Name: "Vue.js 3", Features: []string{"TypeScript", "Vue Router", "Pinia", "Tailwind CSS", "Composition API"}},
	{ID: "Quasar", Name: "Quasar Framework", Features: []string{"TypeScript", "Vue 3", "Material Design", "Cross-platform", "PWA"}},
	{ID: "Angular", Name: "Angular", Features: []string{"TypeScript", "Angular Router", "NgRx", "Angular Material", "PWA"}},
	{ID: "Ionic Angular", Name: "Ionic Angular", Features: []string{"TypeScript", "Ionic UI", "Capacitor", "Angular", "Mobile-first"}},
	{ID: "SvelteKit", Name: "SvelteKit", Features: []string{"TypeScript", "Tailwind CSS", "Svelte stores", "SSR/SSG", "Adapter system"}},
	{ID: "Svelte", Name: "Svelte", Features: []string{"TypeScript", "Svelte stores", "Tailwind CSS", "Vite", "Component-based"}},
	{ID: "React Native Expo", Name: "React Native with Expo", Features: []string{"TypeScript", "Expo SDK", "React Navigation", "Expo Router", "OTA updates"}},
	{ID: "Electron", Name: "Electron", Features: []string{"TypeScript", "React/Vue", "Node.js integration", "Auto-updater", "Native menus"}},
	{ID: "Astro", Name: "Astro", Features: []string{"TypeScript", "Component islands", "Multiple frameworks", "Static generation", "Tailwind CSS"}},
	{ID: "Vite + React", Name: "Vite + React", Features: []string{"TypeScript", "React Router", "Tailwind CSS", "Fast HMR", "Modern build"}},
	{ID: "Vite + Vue", Name: "Vite + Vue", Features: []string{"TypeScript", "Vue Router", "Pinia", "Tailwind CSS", "Fast HMR"}},
	{ID: "Flutter", Name: "Flutter", Features: []string{"Dart", "Material Design", "Cupertino", "State management", "Cross-platform"}},
	{ID: "React Native", Name: "React Native", Features: []string{"TypeScript", "React Navigation", "Expo", "NativeBase/Tamagui", "AsyncStorage"}},
	{ID: "Ionic", Name: "Ionic", Features: []string{"TypeScript", "Ionic UI", "Capacitor", "Angular/React/Vue", "Mobile-first"}},
	{ID: "Xamarin", Name: "Xamarin", Features: []string{"C#", "XAML", "Cross-platform", "Native performance", "Microsoft ecosystem"}},
	{ID: "Tauri", Name: "Tauri", Features: []string{"Rust backend", "Web frontend", "Small bundle", "Security-focused", "Cross-platform"}},
	{ID: "Flutter Desktop", Name: "Flutter Desktop", Features: []string{"Dart", "Cross-platform", "Native performance", "Material Design", "Desktop-specific APIs"}},
}

// catalog indexes both framework lists by target and ID. Built once, never mutated.
var catalog = func() map[Target]map[string]Framework {
	c := map[Target]map[string]Framework{
		TargetBackend:  make(map[string]Framework, len(backendFrameworks)),
		TargetFrontend: make(map[string]Framework, len(frontendFrameworks)),
	}
	for _, f := range backendFrameworks {
		c[TargetBackend][f.ID] = f
	}
	for _, f := range frontendFrameworks {
		c[TargetFrontend][f.ID] = f
	}
	return c
}()

// LookupFramework returns the catalog entry for id under target.
func LookupFramework(target Target, id string) (Framework, error) {
	f, ok := catalog[target][id]
	if !ok {
		return Framework{}, &UnsupportedFrameworkError{Target: target, Framework: id}
	}
	return f, nil
}

// Frameworks lists the catalog for target in display order.
func Frameworks(target Target) []Framework {
	var src []Framework
	switch target {
	case TargetBackend:
		src = backendFrameworks
	case TargetFrontend:
		src = frontendFrameworks
	}
	out := make([]Framework, len(src))
	copy(out, src)
	return out
}

// FrameworkIDs lists framework identifiers for target, sorted.
func FrameworkIDs(target Target) []string {
	ids := make([]string, 0, len(catalog[target]))
	for id := range catalog[target] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Databases lists the selectable databases.
func Databases() []DatabaseOption {
	out := make([]DatabaseOption, len(databaseOptions))
	copy(out, databaseOptions)
	return out
}

// LookupDatabase returns the option for db.
func LookupDatabase(db Database) (DatabaseOption, bool) {
	for _, opt := range databaseOptions {
		if opt.Value == db {
			return opt, true
		}
	}
	return DatabaseOption{}, false
}
