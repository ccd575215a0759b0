package handlers

import (
	"github.com/spec-kit/supportiq/internal/api/dto"
	"github.com/spec-kit/supportiq/internal/domain"
	"github.com/spec-kit/supportiq/internal/promotion"
	"github.com/spec-kit/supportiq/internal/provider"
	"github.com/spec-kit/supportiq/internal/search"
	"github.com/spec-kit/supportiq/internal/service"
	"github.com/spec-kit/supportiq/internal/urgency"
)

func ticketSummary(ticket domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:           ticket.ID,
		ExternalKey:  ticket.ExternalKey,
		Title:        ticket.Title,
		Status:       ticket.Status,
		UrgencyScore: ticket.UrgencyScore,
		UrgencyLevel: ticket.UrgencyLevel,
		AssignedTier: ticket.AssignedTier,
		Category:     ticket.Category,
		CreatedAt:    ticket.CreatedAt,
		UpdatedAt:    ticket.UpdatedAt,
		ResolvedAt:   ticket.ResolvedAt,
	}
}

func ticketDetail(ticket domain.Ticket) dto.TicketDetail {
	return dto.TicketDetail{
		TicketSummary:  ticketSummary(ticket),
		Description:    ticket.Description,
		SentimentScore: ticket.SentimentScore,
		SentimentLabel: ticket.SentimentLabel,
		RequesterEmail: ticket.RequesterEmail,
	}
}

func triageResponse(outcome service.TriageOutcome) dto.TriageResponse {
	return dto.TriageResponse{
		Ticket:      ticketDetail(outcome.Ticket),
		Urgency:     urgencyBreakdown(outcome.Urgency),
		Sentiment:   sentimentResponse(outcome.Sentiment),
		Suggestions: searchResultItems(outcome.Suggestions),
		Degraded:    outcome.Degraded,
	}
}

func urgencyBreakdown(result urgency.Result) dto.UrgencyBreakdown {
	return dto.UrgencyBreakdown{
		Score:             result.Score,
		Level:             result.Level,
		Tier:              result.Tier,
		EffectiveCategory: result.EffectiveCategory,
		Factors:           result.Factors,
		MatchedKeywords:   result.MatchedKeywords,
		Explanation:       result.Explanation,
	}
}

func sentimentResponse(sentiment provider.Sentiment) dto.SentimentResponse {
	return dto.SentimentResponse{
		Label:      sentiment.Label,
		Score:      sentiment.Score,
		Confidence: sentiment.Confidence,
	}
}

func resolutionResponse(resolution domain.Resolution) dto.ResolutionResponse {
	return dto.ResolutionResponse{
		ID:                    resolution.ID,
		TicketID:              resolution.TicketID,
		KnowledgeEntryID:      resolution.KnowledgeEntryID,
		Solution:              resolution.Solution,
		Source:                resolution.Source,
		ResolutionTimeMinutes: resolution.ResolutionTimeMinutes,
		FeedbackScore:         resolution.FeedbackScore,
		FeedbackComment:       resolution.FeedbackComment,
		ResolvedBy:            resolution.ResolvedBy,
		CreatedAt:             resolution.CreatedAt,
	}
}

func entryResponse(entry domain.KnowledgeEntry) dto.KnowledgeEntryResponse {
	return dto.KnowledgeEntryResponse{
		ID:               entry.ID,
		ExternalKey:      entry.ExternalKey,
		Tier:             entry.Tier,
		Title:            entry.Title,
		Content:          entry.Content,
		Keywords:         entry.Keywords,
		Category:         entry.Category,
		UsageCount:       entry.UsageCount,
		FeedbackCount:    entry.FeedbackCount,
		AvgFeedbackScore: entry.AvgFeedbackScore,
		SuccessRate:      entry.SuccessRate,
		Active:           entry.Active,
		CreatedAt:        entry.CreatedAt,
		UpdatedAt:        entry.UpdatedAt,
	}
}

func searchResultItems(results []search.Ranked) []dto.SearchResultItem {
	items := make([]dto.SearchResultItem, 0, len(results))
	for _, result := range results {
		items = append(items, dto.SearchResultItem{
			Entry:         entryResponse(result.Entry),
			HybridScore:   result.HybridScore,
			SemanticScore: result.SemanticScore,
			KeywordScore:  result.KeywordScore,
			Similarity:    result.Similarity,
		})
	}
	return items
}

func promotionRecordResponse(record domain.PromotionRecord) dto.PromotionRecordResponse {
	return dto.PromotionRecordResponse{
		ID:                     record.ID,
		KnowledgeEntryID:       record.KnowledgeEntryID,
		FromTier:               record.FromTier,
		ToTier:                 record.ToTier,
		Reason:                 record.Reason,
		UsageCountAtPromotion:  record.UsageCountAtPromotion,
		AvgFeedbackAtPromotion: record.AvgFeedbackAtPromotion,
		PromotedAt:             record.PromotedAt,
	}
}

func promotionCandidateResponse(candidate promotion.ProgressCandidate) dto.PromotionCandidateResponse {
	return dto.PromotionCandidateResponse{
		Entry:             entryResponse(candidate.Entry),
		TargetTier:        candidate.Rule.To,
		UsageThreshold:    candidate.Rule.UsageThreshold,
		ProgressPercent:   candidate.ProgressPercent,
		FeedbackQualified: candidate.FeedbackQualified,
	}
}
