package prompt

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidTarget       = errors.New("target must be backend or frontend")
	ErrUnsupportedDatabase = errors.New("unsupported database")
	ErrInvalidDeployment   = errors.New("deployment mode must be docker or local")
)

// CodeGenParams parameterizes one code-generation prompt.
type CodeGenParams struct {
	Target    Target
	Framework string
	// Spec is appended verbatim.
	Spec string
	// Database applies to backend targets only. Empty means none selected.
	Database Database
	// Repository is an optional "owner/name".
	Repository string
	// Deployment defaults to DeploymentDocker.
	Deployment DeploymentMode
}

// OverrideFunc fully replaces the generic composition for one framework.
type OverrideFunc func(fw Framework, p CodeGenParams, db *DatabaseOption) string

// overrides is keyed by framework ID.
var overrides = map[string]OverrideFunc{
	"PHP Laravel":    laravelPrompt,
	"PHP Laravel 11": laravelPrompt,
}

// HasOverride reports whether framework bypasses the generic template.
func HasOverride(framework string) bool {
	_, ok := overrides[framework]
	return ok
}

type section struct {
	title string
	items []string
}

type basePrompt struct {
	prefix   string
	lead     string
	sections []section
}

const dockerItem = "Docker configuration (Dockerfile and docker-compose.yml)"

var basePrompts = map[Target]basePrompt{
	TargetBackend: {
		prefix: "Generate a complete, production-ready",
		lead:   "application based on the Swagger specification provided below. The application should include:",
		sections: []section{
			{"CORE REQUIREMENTS", []string{
				"Complete implementation of all API endpoints from the Swagger specification",
				"Proper project structure following framework best practices",
				"Database models/entities with appropriate relationships and validations",
				"Controllers/handlers with proper request/response handling",
				"Authentication and authorization implementation",
				"Input validation and error handling",
				"Comprehensive test suite (unit and integration tests)",
				dockerItem,
				"Environment configuration and secrets management",
				"API documentation integration",
				"Logging and monitoring setup",
				"Health check endpoints",
			}},
			{"TECHNICAL REQUIREMENTS", []string{
				"Follow RESTful API conventions",
				"Implement proper HTTP status codes",
				"Use appropriate design patterns (Repository, Service, etc.)",
				"Include database migrations/schema setup",
				"Implement proper CORS configuration",
				"Add rate limiting and security middleware",
				"Include API versioning strategy",
				"Implement proper exception handling",
				"Add request/response logging",
				"Include performance optimization",
			}},
			{"TESTING & DEPLOYMENT", []string{
				"Unit tests for all business logic",
				"Integration tests for API endpoints",
				"Test fixtures and mock data",
				"CI/CD pipeline configuration",
				"Production-ready configuration",
				"Database seeding scripts",
				"API documentation (Swagger/OpenAPI integration)",
			}},
		},
	},
	TargetFrontend: {
		prefix: "Generate a complete, professional-grade",
		lead:   "application based on the Swagger specification provided below. The application should include:",
		sections: []section{
			{"CORE REQUIREMENTS", []string{
				"Complete UI implementation for all API endpoints from the Swagger specification",
				"Modern, responsive design with clean UX/UI",
				"Proper routing and navigation structure",
				"State management implementation",
				"API integration with proper error handling",
				"Authentication and authorization flows",
				"Form validation and user feedback",
				"Loading states and error boundaries",
				"Comprehensive component library",
				dockerItem,
				"Environment configuration",
				"Build optimization and deployment setup",
			}},
			{"TECHNICAL REQUIREMENTS", []string{
				"TypeScript implementation (where applicable)",
				"Responsive design (mobile-first approach)",
				"Accessibility compliance (WCAG guidelines)",
				"SEO optimization",
				"Performance optimization (lazy loading, code splitting)",
				"Progressive Web App features (where applicable)",
				"Internationalization support (i18n)",
				"Theme support (light/dark mode)",
				"Component testing setup",
				"Proper error handling and user feedback",
				"API caching and optimization",
				"Security best practices (XSS, CSRF protection)",
			}},
			{"STYLING & COMPONENTS", []string{
				"Modern CSS framework integration (Tailwind CSS preferred)",
				"Reusable component architecture",
				"Design system implementation",
				"Animation and micro-interactions",
				"Consistent spacing and typography",
				"Icon library integration",
				"Image optimization",
				"Responsive breakpoints",
			}},
			{"TESTING & DEPLOYMENT", []string{
				"Component testing (Jest, Testing Library)",
				"E2E testing setup (Cypress/Playwright)",
				"Visual regression testing",
				"Performance testing",
				"Build optimization",
				"Static analysis and linting",
				"CI/CD pipeline configuration",
				"Production deployment configuration",
			}},
		},
	},
}

// BuildCodeGenPrompt composes the instruction block sent to the
// code-generation service. The spec text always closes the prompt unmodified.
func BuildCodeGenPrompt(p CodeGenParams) (string, error) {
	if !p.Target.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTarget, p.Target)
	}
	if p.Deployment == "" {
		p.Deployment = DeploymentDocker
	}
	if !p.Deployment.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidDeployment, p.Deployment)
	}

	fw, err := LookupFramework(p.Target, p.Framework)
	if err != nil {
		return "", err
	}

	var db *DatabaseOption
	if p.Target == TargetBackend && p.Database != "" {
		opt, ok := LookupDatabase(p.Database)
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrUnsupportedDatabase, p.Database)
		}
		if fw.SupportsDatabase(opt.Value) {
			db = &opt
		}
	}

	if override, ok := overrides[fw.ID]; ok {
		return override(fw, p, db), nil
	}
	return genericPrompt(fw, p, db), nil
}

func genericPrompt(fw Framework, p CodeGenParams, db *DatabaseOption) string {
	base := basePrompts[p.Target]
	docker := p.Deployment == DeploymentDocker

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s %s\n", base.prefix, fw.Name, base.lead)
	for _, s := range base.sections {
		sb.WriteString("\n" + s.title + ":\n")
		for _, item := range s.items {
			if item == dockerItem && !docker {
				continue
			}
			sb.WriteString("- " + item + "\n")
		}
	}

	if len(fw.Features) > 0 {
		sb.WriteString("\nFRAMEWORK-SPECIFIC FEATURES:\n")
		for _, f := range fw.Features {
			sb.WriteString("- " + f + "\n")
		}
	}

	if db != nil {
		sb.WriteString("\nDATABASE CONFIGURATION:\n")
		fmt.Fprintf(&sb, "- Database: %s\n", db.Label)
		fmt.Fprintf(&sb, "- Integration: %s\n", fw.Databases[db.Value])
		fmt.Fprintf(&sb, "- Database features: %s\n", strings.Join(db.Features, ", "))
		sb.WriteString("- Configure the connection through environment variables\n")
	}

	sb.WriteString("\nDEPLOYMENT:\n")
	if docker {
		sb.WriteString("- Provide a Dockerfile and docker-compose.yml that build and run the application\n")
		if db != nil {
			fmt.Fprintf(&sb, "- Include a %s service in docker-compose.yml\n", db.Label)
		}
	} else {
		sb.WriteString("- Do NOT include Docker configuration (no Dockerfile or docker-compose.yml)\n")
		sb.WriteString("- The application runs directly on the local machine; document local setup in the README\n")
	}

	writeRepository(&sb, p.Repository)

	sb.WriteString("\nThis is the Swagger specification:\n")
	sb.WriteString(p.Spec)
	return sb.String()
}

func writeRepository(sb *strings.Builder, repo string) {
	repo = strings.TrimSpace(repo)
	if repo == "" {
		return
	}
	sb.WriteString("\nREPOSITORY:\n")
	fmt.Fprintf(sb, "- Open a pull request against the repository %q\n", repo)
	sb.WriteString("- Follow the existing conventions and structure of that repository\n")
}
