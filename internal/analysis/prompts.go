package analysis

const (
	conversationPlaceholder = "<<<CONVERSATION>>>"
	analysisDataPlaceholder = "<<<ANALYSIS_DATA>>>"
)

const emotionAnalysisPrompt = `You are an emotion analysis system. Analyze the following conversation for emotional patterns.

IMPORTANT: Return ONLY valid JSON. No markdown, no explanation.

Extract:
1. primary_emotions: Main emotions expressed (anxiety, sadness, anger, confusion, fear, loneliness, frustration, overwhelm, etc.)
2. secondary_emotions: Underlying or mixed feelings (guilt, shame, hopelessness, etc.)
3. themes: Recurring topics (work stress, relationships, self-worth, family, academic pressure, burnout, etc.)
4. possible_core_issue: The most likely root cause (e.g., "work-related burnout", "relationship conflict")
5. intensity: Overall emotional intensity (low, medium, high, crisis)

Conversation:
<<<CONVERSATION>>>

Return ONLY this JSON format:
{
  "primary_emotions": [],
  "secondary_emotions": [],
  "themes": [],
  "possible_core_issue": "",
  "intensity": ""
}`

const summaryPrompt = `You are a clinical summarization system for mental health professionals.

Based on the following emotional analysis data, create a brief, professional summary that a psychologist could review.

GUIDELINES:
- Use clear, neutral, professional language
- No assumptions or diagnoses
- Focus on what the user expressed and patterns observed
- Suggest areas for therapeutic exploration
- Keep it concise (3-4 sentences)

FORMAT:
"The user expresses [emotions] primarily related to [context]. There is [pattern/theme]. Further exploration of [topic] is recommended."

ANALYSIS DATA:
<<<ANALYSIS_DATA>>>

Provide:
1. summary: A 3-4 sentence professional summary
2. recommendations: 2-3 brief suggestions for therapeutic exploration
3. risk_level: low, moderate, elevated, or high (based on intensity and themes)

Return ONLY valid JSON:
{
  "summary": "",
  "recommendations": [],
  "risk_level": ""
}`
