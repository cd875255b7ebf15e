package agents

import (
	"fmt"

	"tribunal/internal/adapters/ai"
	"tribunal/internal/tools"
)

// Display names of the three analysis participants, in speaking order.
const (
	SentimentAnalystName = "SentimentAnalyst"
	TechnicalAnalystName = "TechnicalAnalyst"
	OrchestratorName     = "Orchestrator"
)

const sentimentInstructions = `You are a financial news sentiment expert.
When asked for a ticker analysis, you MUST:
1. Use the news_sentiment_tool function to get news articles
2. Analyze the articles yourself, extracting the overall sentiment
3. Explain if the company performance is Strong/Mixed/Poor with clear reasoning
4. Count positive vs negative vs neutral sentiments
5. Explain how the sentiment supports your decision

You are EXCLUSIVELY a news sentiment analyst. Your expertise is interpreting
news articles, press releases, and market sentiment.

Stick to what you do best - sentiment analysis. You DO NOT provide technical
analysis based on SMA50 vs SMA200 (golden/death cross), RSI levels, MACD signals.

Always end with a clear statement: 'The company performance is STRONG/MIXED/POOR'`

const technicalInstructions = `You are a technical analysis expert.
When asked for a ticker analysis, you MUST:
1. Use the technical_analysis_tool function to get technical indicators
2. Analyze the technical data yourself
3. Interpret SMA50 vs SMA200 (golden/death cross), RSI levels, MACD signals
4. Explain if the company performance is Strong/Mixed/Poor with clear reasoning
5. Explain what each indicator means and how it supports your decision

You are EXCLUSIVELY a technical analyst. Your expertise is interpreting
technical indicators.

Stick to what you do best - technical analysis. You DO NOT provide sentiment
analysis based on news articles.

Always end with a clear statement: 'The company performance is STRONG/MIXED/POOR'`

const orchestratorInstructions = `You are the Orchestrator. You coordinate the analysis process:
1. When you receive a task, ask the SentimentAnalyst to provide their news sentiment analysis
2. After the SentimentAnalyst responds, ask the TechnicalAnalyst to provide their technical analysis
3. After both agents provide their analysis, synthesize them
4. If both agents agree that the company's performance is STRONG/MIXED/POOR, confirm that decision
5. If they disagree, weigh the evidence and make a final call
6. Always provide a final verdict: 'FINAL VERDICT: STRONG/MIXED/POOR performance'
7. In the final message, when providing the final verdict, do not thank the other agents.
8. In the final message, when providing the final verdict, summarize the news output from the SentimentAnalyst and provide all the technical details from the TechnicalAnalyst including hard numbers. Also mention their STRONG/MIXED/POOR verdict.
9. Start the final message with "Here is a summary of the inputs from the Sentiment and Technical Analysts:"

If an agent does not provide a STRONG/MIXED/POOR verdict, you explicitly ask them for one.
Be conversational - ask the agents direct questions to get their analysis.`

// SentimentRole restricts the sentiment analyst to the news tool.
func SentimentRole(available []ai.ToolDefinition) Role {
	return Role{
		Name:         SentimentAnalystName,
		Instructions: sentimentInstructions,
		Tools:        selectTools(available, tools.ToolNewsSentiment),
	}
}

// TechnicalRole restricts the technical analyst to the indicator tool.
func TechnicalRole(available []ai.ToolDefinition) Role {
	return Role{
		Name:         TechnicalAnalystName,
		Instructions: technicalInstructions,
		Tools:        selectTools(available, tools.ToolTechnicalAnalysis),
	}
}

// OrchestratorRole has no tools; it synthesizes the analysts' outputs.
func OrchestratorRole() Role {
	return Role{
		Name:         OrchestratorName,
		Instructions: orchestratorInstructions,
	}
}

// AnalysisRoles returns the three roles in speaking order, each wired to its
// slice of the advertised tool set.
func AnalysisRoles(available []ai.ToolDefinition) []Role {
	return []Role{
		SentimentRole(available),
		TechnicalRole(available),
		OrchestratorRole(),
	}
}

// AnalysisTask renders the opening request that seeds a conversation.
func AnalysisTask(ticker string) string {
	return fmt.Sprintf("Provide an analysis for %s's performance today based on both news sentiment and technical analysis.", ticker)
}

func selectTools(available []ai.ToolDefinition, names ...string) []ai.ToolDefinition {
	var selected []ai.ToolDefinition
	for _, name := range names {
		for _, def := range available {
			if def.Function.Name == name {
				selected = append(selected, def)
			}
		}
	}
	return selected
}
