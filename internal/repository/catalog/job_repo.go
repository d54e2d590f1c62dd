package catalog

import (
	"context"
	"time"

	"chamba-onchain-backend/internal/domain"
)

type jobRepo struct {
	jobs []domain.Job
}

// NewJobRepository returns the static job catalog with postedAt relative to now.
func NewJobRepository(now time.Time) domain.JobRepository {
	return &jobRepo{jobs: mockJobs(now)}
}

func (r *jobRepo) All(_ context.Context) ([]domain.Job, error) {
	out := make([]domain.Job, len(r.jobs))
	copy(out, r.jobs)
	return out, nil
}

func (r *jobRepo) GetByID(_ context.Context, id string) (*domain.Job, error) {
	for i := range r.jobs {
		if r.jobs[i].ID == id {
			job := r.jobs[i]
			return &job, nil
		}
	}
	return nil, domain.ErrNotFound
}

func daysAgo(now time.Time, days int) time.Time {
	return now.Add(-time.Duration(days) * 24 * time.Hour)
}

func mockJobs(now time.Time) []domain.Job {
	return []domain.Job{
		{
			ID:          "job-1",
			Title:       "Desarrollador Web3 Junior",
			Company:     "Blockchain Solutions",
			Description: "Buscamos un desarrollador junior apasionado por Web3 y blockchain para unirse a nuestro equipo. Trabajarás en proyectos descentralizados y aprenderás de los mejores.",
			Requirements: []string{
				"Conocimientos básicos de Solidity",
				"Experiencia con JavaScript/TypeScript",
				"Interés en blockchain y Web3",
				"Buenas habilidades de comunicación",
			},
			Location: "Remoto",
			Type:     domain.JobTypeFullTime,
			Salary:   "$800 - $1200 USD/mes",
			PostedAt: daysAgo(now, 2),
		},
		{
			ID:          "job-2",
			Title:       "Frontend Developer React",
			Company:     "TechStart Inc",
			Description: "Oportunidad para desarrollador frontend con React. Trabajarás en aplicaciones modernas y tendrás la oportunidad de crecer profesionalmente.",
			Requirements: []string{
				"Experiencia con React y Next.js",
				"Conocimientos de TypeScript",
				"Portfolio con proyectos demostrables",
			},
			Location: "Híbrido",
			Type:     domain.JobTypeFullTime,
			Salary:   "$1000 - $1500 USD/mes",
			PostedAt: daysAgo(now, 5),
		},
		{
			ID:          "job-3",
			Title:       "Intern - Desarrollo Blockchain",
			Company:     "Crypto Ventures",
			Description: "Programa de internado para estudiantes que quieren aprender sobre desarrollo blockchain. Mentoreo personalizado y proyectos reales.",
			Requirements: []string{
				"Estudiante activo",
				"Conocimientos básicos de programación",
				"Curiosidad por blockchain",
			},
			Location: "Remoto",
			Type:     domain.JobTypeInternship,
			Salary:   "$400 - $600 USD/mes",
			PostedAt: daysAgo(now, 1),
		},
		{
			ID:          "job-4",
			Title:       "Smart Contract Developer",
			Company:     "DeFi Labs",
			Description: "Desarrollador de smart contracts con experiencia en Solidity. Trabajarás en protocolos DeFi innovadores.",
			Requirements: []string{
				"Experiencia sólida en Solidity",
				"Conocimientos de seguridad de smart contracts",
				"Portfolio de contratos desplegados",
			},
			Location: "Remoto",
			Type:     domain.JobTypeContract,
			Salary:   "$2000 - $3000 USD/mes",
			PostedAt: daysAgo(now, 7),
		},
		{
			ID:          "job-5",
			Title:       "Full Stack Developer",
			Company:     "Web3 Studio",
			Description: "Desarrollador full stack para proyectos Web3. Stack: React, Node.js, Solidity, IPFS.",
			Requirements: []string{
				"Experiencia full stack",
				"Conocimientos de Web3",
				"Trabajo en equipo",
			},
			Location: "Remoto",
			Type:     domain.JobTypeFullTime,
			Salary:   "$1500 - $2000 USD/mes",
			PostedAt: daysAgo(now, 3),
		},
	}
}
