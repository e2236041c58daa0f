package analysis

const stressInstruction = `Analyze the above call transcript and determine if the caller is experiencing stress.

STRESS INDICATORS include:
- Words expressing anxiety, worry, or fear
- Expressions of frustration or feeling overwhelmed
- Mentions of time pressure, urgency, or deadlines
- Emotional language (scared, panicking, breaking down)
- Difficulty coping or managing situations
- Sleep problems, exhaustion, burnout

Respond ONLY with valid JSON in this exact format:
{
  "stressed_detected": true or false,
  "confidence": 0.0 to 1.0
}

Do not include any explanation, only the JSON object.`

const sentimentInstruction = `Count the number of POSITIVE and NEGATIVE sentiment expressions in the call transcript.

POSITIVE INDICATORS:
- Hopeful, optimistic expressions
- Gratitude or appreciation
- Satisfaction or contentment
- Excitement or enthusiasm
- Relief or comfort

NEGATIVE INDICATORS:
- Frustration or anger
- Disappointment or discouragement
- Sadness or distress
- Fear or anxiety
- Resignation or hopelessness

Count each distinct expression. If the same sentiment is repeated, count each occurrence.

Respond ONLY with valid JSON in this exact format:
{
  "sentiment_counts": {
    "positive": <number>,
    "negative": <number>
  }
}

Do not include any explanation, only the JSON object.`

const stressorInstruction = `Identify the TOP STRESSORS mentioned or implied in this call transcript.

COMMON STRESSOR CATEGORIES:
- Workload (too much work, unrealistic expectations)
- Deadlines (time pressure, urgent tasks)
- Management (difficult boss, lack of support, micromanagement)
- Relationships (conflicts, difficult colleagues, isolation)
- Health (physical health issues, sleep problems, exhaustion)
- Finances (money concerns, compensation issues)
- Work-life balance (long hours, no personal time)
- Uncertainty (job security, unclear expectations, changes)
- Resources (lack of tools, insufficient staffing, training gaps)

Extract the 3-5 most prominent stressors and return them as a comma-separated list.
Use concise, descriptive labels (e.g., "workload", "deadlines", "manager behavior").

If no clear stressors are identified, return an empty string.

Respond ONLY with valid JSON in this exact format:
{
  "top_stressors": "stressor1, stressor2, stressor3"
}

Do not include any explanation, only the JSON object.`

const blockerInstruction = `Identify COMMON BLOCKERS mentioned in this call that prevent progress or cause frustration.

COMMON BLOCKER TYPES:
- Waiting for approvals (decisions stuck, pending sign-offs)
- Lack of clarity (unclear requirements, ambiguous goals, confusion)
- Resource crunch (insufficient budget, understaffed, missing tools)
- Bureaucracy (excessive processes, red tape, slow systems)
- Communication gaps (information not shared, poor coordination)
- Technical issues (system problems, tool limitations, bugs)
- Dependencies (waiting on others, blocked by other teams)
- Training gaps (lack of knowledge, unclear procedures)
- Access issues (permissions, credentials, availability)

Extract the 3-5 most significant blockers and return them as a comma-separated list.
Use concise, descriptive labels (e.g., "waiting for approvals", "lack of clarity", "resource crunch").

If no clear blockers are identified, return an empty string.

Respond ONLY with valid JSON in this exact format:
{
  "common_blockers": "blocker1, blocker2, blocker3"
}

Do not include any explanation, only the JSON object.`

const severityInstruction = `Determine if this call represents a SEVERE CASE requiring URGENT attention.

SEVERE CASE INDICATORS (any of these = severe):
- Self-harm mentions or suicidal ideation
- Immediate danger to self or others
- Extreme emotional distress (panic attack, breakdown, crisis)
- Mentions of abuse or violence
- Severe mental health crisis
- Expressions of giving up or losing hope entirely
- Plans to harm self or others

NON-SEVERE (typical stress/difficulty):
- General work stress or frustration
- Relationship conflicts
- Financial concerns
- Time management issues
- Typical anxiety or worry

Also consider call duration as context:
- Very short calls (<60s) with crisis language = likely severe
- Long calls (>300s) exploring options = may be less severe

Respond ONLY with valid JSON in this exact format:
{
  "is_severe_case": true or false,
  "severity_indicators": ["reason1", "reason2"] or null
}

If is_severe_case is true, provide the specific indicators found. If false, set severity_indicators to null.

Do not include any explanation, only the JSON object.`
