package openai

import (
	"fmt"
	"strings"

	"github.com/mageshboopath1/live-esg/ai"
)

const extractionResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "indicators": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "code": {
            "type": "string",
            "pattern": "^[A-Z]+(-[A-Z0-9]+)+$"
          },
          "value": {
            "type": "string"
          },
          "numeric": {
            "type": ["number", "null"]
          },
          "confidence": {
            "type": "number",
            "minimum": 0,
            "maximum": 1
          },
          "pages": {
            "type": "array",
            "items": {"type": "integer", "minimum": 1}
          }
        },
        "required": ["code", "value", "numeric", "confidence", "pages"],
        "additionalProperties": false
      }
    }
  },
  "required": ["indicators"],
  "additionalProperties": false
}`

const extractionPromptTemplate = `You are reading a corporate ESG disclosure report. Extract the values the report
discloses for the indicators listed below and return them as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Indicators to look for:
%s

Rules:
- Report only indicators from the list above, identified by their exact code.
- Report only values the text explicitly discloses. Do not infer, estimate, or invent figures.
- "value" is the figure verbatim, as the document words it.
- "numeric" is the reading parsed as a number in the indicator's unit. Use null when the disclosure is qualitative and no number can be parsed.
- "confidence" is your confidence in the reading, from 0 to 1.
- "pages" lists the page numbers where the reading appears, taken from the [page N] markers in the text.
- When the report gives the same indicator for several years, use the most recent reporting year.
- If the text discloses none of the indicators, return "indicators": [].
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.



Example (quantitative disclosure):
Input: "[page 12] Our emissions intensity for FY2023 was 412 tCO2e per million dollars of revenue, down from 460 the prior year."
Output:
{
  "indicators": [
    {"code":"E-GHG-INT","value":"412 tCO2e per million dollars of revenue","numeric":412,"confidence":0.95,"pages":[12]}
  ]
}

Example (percentage disclosure):
Input: "[page 8] Renewable sources supplied 38%% of total energy consumption."
Output:
{
  "indicators": [
    {"code":"E-ENE-REN","value":"38%% of total energy consumption","numeric":38,"confidence":0.95,"pages":[8]}
  ]
}

Example (qualitative disclosure, no parseable number):
Input: "[page 33] The company maintains a whistleblower program. The number of reported incidents was not disclosed."
Output:
{
  "indicators": [
    {"code":"G-ETH-INC","value":"whistleblower program maintained, incident count not disclosed","numeric":null,"confidence":0.6,"pages":[33]}
  ]
}

Example (nothing disclosed):
Input: "[page 2] This section describes the company's products and markets."
Output:
{
  "indicators": []
}`

// buildSystemPrompt creates the system prompt with the indicator catalog embedded.
func buildSystemPrompt(specs []ai.IndicatorSpec) string {
	var catalog strings.Builder
	for _, spec := range specs {
		catalog.WriteString("- ")
		catalog.WriteString(spec.Code)
		catalog.WriteString(": ")
		catalog.WriteString(spec.Name)
		if spec.Unit != "" {
			catalog.WriteString(" (unit: ")
			catalog.WriteString(spec.Unit)
			catalog.WriteString(")")
		}
		if spec.Guidance != "" {
			catalog.WriteString(". ")
			catalog.WriteString(spec.Guidance)
		}
		catalog.WriteString("\n")
	}

	return fmt.Sprintf(extractionPromptTemplate,
		extractionResponseSchema,
		strings.TrimRight(catalog.String(), "\n"))
}
