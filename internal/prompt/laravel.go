package prompt

import (
	"fmt"
	"strings"
)

// laravelPrompt is a narrative prompt for Laravel targets. It ignores the
// generic section list entirely.
func laravelPrompt(fw Framework, p CodeGenParams, db *DatabaseOption) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are building a production-grade %s API. ", fw.Name)
	sb.WriteString("Read the Swagger specification at the end of this message and implement every path and operation it defines as a Laravel API resource. ")
	sb.WriteString("Create one Eloquent model, migration, factory and seeder per schema, and keep controllers thin by moving business rules into service classes. ")
	sb.WriteString("Validate every request with a dedicated Form Request class and shape every response with an API Resource so the JSON matches the specification exactly.\n\n")

	sb.WriteString("Protect the endpoints the specification marks as secured with Laravel Sanctum tokens. ")
	sb.WriteString("Register routes in routes/api.php under a versioned prefix and return the documented HTTP status codes for validation, authorization and missing-record failures. ")
	sb.WriteString("Write feature tests for every endpoint and unit tests for the service classes, and make sure `php artisan test` passes on a fresh checkout.\n\n")

	if db != nil {
		fmt.Fprintf(&sb, "Use %s as the database (%s). ", db.Label, fw.Databases[db.Value])
		fmt.Fprintf(&sb, "Set DB_CONNECTION and the related variables in .env.example, and rely on %s.\n\n", strings.Join(db.Features, ", "))
	}

	if p.Deployment == DeploymentLocal {
		sb.WriteString("Do NOT use Docker, Laravel Sail, a Dockerfile or docker-compose.yml. ")
		sb.WriteString("The project must run with `composer install`, `php artisan migrate --seed` and `php artisan serve` on a machine that already has PHP and Composer installed. ")
		sb.WriteString("Describe those steps in the README.\n")
	} else {
		sb.WriteString("Ship a Dockerfile and docker-compose.yml that run the application with PHP-FPM and nginx")
		if db != nil {
			fmt.Fprintf(&sb, " next to a %s container", db.Label)
		}
		sb.WriteString(", and document `docker compose up` in the README.\n")
	}

	writeRepository(&sb, p.Repository)

	sb.WriteString("\nThis is the Swagger specification:\n")
	sb.WriteString(p.Spec)
	return sb.String()
}
