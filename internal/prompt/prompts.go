// Package prompt assembles every text sent to a language model or to the
// code-generation service. All functions are pure.
package prompt

import "fmt"

const EnhancementSystemPrompt = "You are an expert prompt engineer specializing in code generation prompts."

const enhancementTemplate = `Your task is to enhance and improve the following user prompt to make it more detailed, specific, and effective for generating high-quality source code.

Original prompt: "%s"

Provide an enhanced version of this prompt that:
1. Adds more specific technical details and context
2. Clarifies any ambiguous parts related to the code requirements
3. Structures the prompt in a clear way that will lead to better code generation
4. Includes any relevant constraints, patterns, or best practices to follow
5. Specifies language, framework, or library preferences if they were implied

Return ONLY the enhanced prompt without any explanations, introductions, or additional text.`

const SpecificationSystemPrompt = `You are an expert API designer specializing in OpenAPI (Swagger) 3.0 specifications.
Your task is to create syntactically perfect OpenAPI 3.0 YAML specifications.
Follow these strict rules:
1. NEVER include markdown code block markers like ` + "```yaml or ```" + ` in your response
2. Start directly with the OpenAPI specification (openapi: 3.0.0)
3. Ensure all YAML is properly indented and syntactically correct
4. Use only valid OpenAPI 3.0 syntax
5. Include proper schema definitions for all data models
6. Define clear request and response objects
7. Include appropriate examples for requests and responses
8. Use proper data types (string, integer, boolean, etc.)
9. Ensure all references are valid
10. Include proper error responses (400, 401, 403, 404, 500)`

const specificationTemplate = `Based on the following requirements, create a comprehensive OpenAPI (Swagger) 3.0 specification in YAML format.

Requirements:
%s

Your task:
1. Analyze the requirements thoroughly
2. Identify all the key features and functionality needed
3. Determine what API endpoints would be required
4. Create a complete OpenAPI 3.0 specification in YAML format that includes:
   - Appropriate paths and operations
   - Request parameters and bodies with proper schemas
   - Response schemas and examples
   - Clear descriptions for all components
   - Proper error responses
   - Authentication requirements if applicable

IMPORTANT:
- Do NOT include any markdown formatting or code block markers
- Start directly with 'openapi: 3.0.0'
- Ensure all YAML is properly indented and syntactically correct
- Use only valid OpenAPI 3.0 syntax
- Include proper schema definitions for all data models
- Define clear request and response objects
- Include appropriate examples for requests and responses
- Use proper data types (string, integer, boolean, etc.)
- Ensure all references are valid
- Include proper error responses (400, 401, 403, 404, 500)

Return ONLY the OpenAPI specification in YAML format, without any explanations, markdown formatting, or additional text.`

// BuildEnhancementPrompt wraps the user's raw request for the enhance task.
func BuildEnhancementPrompt(userText string) string {
	return fmt.Sprintf(enhancementTemplate, userText)
}

// BuildSpecificationPrompt wraps an enhanced prompt for the specify task.
func BuildSpecificationPrompt(enhanced string) string {
	return fmt.Sprintf(specificationTemplate, enhanced)
}
